package dto

type PipelineStatusResponse struct {
	Env           map[string]bool `json:"env"`
	PipelineReady bool            `json:"pipeline_ready"`
	Model         string          `json:"model"`
}

type ReinitializeResponse struct {
	PipelineReady bool  `json:"pipeline_ready"`
	ElapsedMs     int64 `json:"elapsed_ms"`
}
