package protocol

// LoginParams is the params body of an outbound login request.
type LoginParams struct {
	Login string `json:"login"`
	Pass  string `json:"pass"`
	Agent string `json:"agent"`
}

// GetJobTemplateParams is the params body of an outbound
// getjobtemplate request.
type GetJobTemplateParams struct {
	Algorithm string `json:"algorithm"`
}

// SubmitParams is the params body of an outbound submit request,
// built from a miner-reported Solution.
type SubmitParams struct {
	Height uint64 `json:"height"`
	JobID  uint64 `json:"job_id"`
	Nonce  uint64 `json:"nonce"`
	Pow    any    `json:"pow"`
}
