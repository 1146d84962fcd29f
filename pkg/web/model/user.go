package model

// 请求数据结构，校验在 service 层完成
type (
	RegisterReq struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginReq struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
)
