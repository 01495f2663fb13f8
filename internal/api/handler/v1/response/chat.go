package response

type CountResponse struct {
	Count int64 `json:"count"`
}

type OnlineResponse struct {
	Online int `json:"online"`
}
