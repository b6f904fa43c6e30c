package defs

// Protocol data structures. Inbound payloads carry loose landmark shapes;
// see landmarks.go for the coercion boundary.
type (
	// Envelope is the minimal routing view of any inbound message.
	Envelope struct {
		Type   string `json:"type"`
		RoomID string `json:"room_id,omitempty"`
		CorrID string `json:"corr_id,omitempty"`
	}

	// CoordsData is the telemetry/echo payload: a list of hands.
	CoordsData struct {
		Hands  []LooseHand `json:"hands"`
		RoomID string      `json:"room_id,omitempty"`
		CorrID string      `json:"corr_id,omitempty"`
	}

	// HandLandmarksData is the single-frame classification payload.
	HandLandmarksData struct {
		Landmarks []LooseHand `json:"landmarks"`
		RoomID    string      `json:"room_id,omitempty"`
		CorrID    string      `json:"corr_id,omitempty"`
		FrameID   interface{} `json:"frame_id,omitempty"`
	}

	// SequenceData is the multi-frame classification payload.
	SequenceData struct {
		FrameSequence []LooseHand `json:"frame_sequence"`
		RoomID        string      `json:"room_id,omitempty"`
		CorrID        string      `json:"corr_id,omitempty"`
	}

	// ConnectionTestData is the connectivity check.
	ConnectionTestData struct {
		Message string `json:"message,omitempty"`
	}
)

type (
	// CoordsAck echoes how many hands/points arrived.
	CoordsAck struct {
		Type   string `json:"type"`
		CorrID string `json:"corr_id,omitempty"`
		Hands  int    `json:"hands"`
		Count  int    `json:"count"`
	}

	// CaptionResult is the classification result fanned out to clients.
	CaptionResult struct {
		Type       string  `json:"type"`
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
		CorrID     string  `json:"corr_id,omitempty"`
	}

	// ConnectionTestResponse answers a connectivity check.
	ConnectionTestResponse struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}

	// ErrorData represents data sent with error responses.
	ErrorData struct {
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	// BindData notifies a pooled worker of its room assignment.
	BindData struct {
		Type   string `json:"type"`
		RoomID string `json:"room_id"`
	}

	// AiResult is published by the worker client after classifying.
	AiResult struct {
		Type    string      `json:"type"`
		Text    string      `json:"text"`
		Score   float64     `json:"score"`
		FrameID interface{} `json:"frame_id,omitempty"`
		RoomID  string      `json:"room_id,omitempty"`
	}
)
