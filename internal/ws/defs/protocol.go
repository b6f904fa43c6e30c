package defs

// Message types consumed by the router.
const (
	TypeCoords         = "coords"
	TypeHandLandmarks  = "hand_landmarks"
	TypeSequence       = "hand_landmarks_sequence"
	TypeConnectionTest = "connection_test"
)

// Message types produced.
const (
	TypeCoordsAck              = "coords_ack"
	TypeCaption                = "caption"
	TypeSubtitle               = "subtitle"
	TypeConnectionTestResponse = "connection_test_response"
	TypeError                  = "error"
	TypeBind                   = "bind"
	TypeAiResult               = "ai_result"
)

// Error codes carried in error replies.
const (
	CodeInvalidPayload   = 2001
	CodeInferFailed      = 2002
	CodeSequenceFailed   = 2003
	CodeUnsupportedShape = 2004
)
