package dto

// CheckInRequest 打卡请求，success 缺省为 true
type CheckInRequest struct {
	Success *bool `json:"success"`
}

// CheckInInfo 打卡记录
type CheckInInfo struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"` // YYYY-MM-DD (UTC)
	Success bool   `json:"success"`
}

// CheckInResponse 打卡结果，附带重新计算后的承诺
type CheckInResponse struct {
	CheckIn    *CheckInInfo    `json:"check_in"`
	Commitment *CommitmentInfo `json:"commitment"`
}
