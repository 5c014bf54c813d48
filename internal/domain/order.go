package domain

import "time"

// Order is a confirmed swap request handed to an executor.
type Order struct {
	From   string
	To     string
	Amount float64 // input amount in From units
	Rate   float64 // To per From at confirmation time
}

// Fill is the executor's answer for an Order.
type Fill struct {
	AmountOut  float64 // output amount in To units
	ExecutedAt time.Time
}

// Receipt records a completed swap for the lifetime of a session.
type Receipt struct {
	ID          string    `json:"id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	AmountIn    float64   `json:"amount_in"`
	AmountOut   float64   `json:"amount_out"`
	Rate        float64   `json:"rate"`
	SubmittedAt time.Time `json:"submitted_at"`
	CompletedAt time.Time `json:"completed_at"`
	Message     string    `json:"message"`
}

// MessageKind classifies a submission result message.
type MessageKind string

// Message kinds
const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// SubmitMessage is the user-facing outcome of a submission.
type SubmitMessage struct {
	Kind MessageKind `json:"type"`
	Text string      `json:"text"`
}
