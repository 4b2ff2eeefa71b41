package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Flag is a boolean that also accepts the 0/1 integers written by older
// exports and seed lists. It always serializes as a JSON boolean.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid flag value: %s", data)
	}
	*f = n != 0
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

type PromptResponse struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Tags   string `json:"tags"`
	Locked Flag   `json:"locked"`
}

type PromptRequest struct {
	Title  string `json:"title" validate:"required,notblank"`
	Body   string `json:"body" validate:"required,notblank"`
	Tags   string `json:"tags"`
	Locked Flag   `json:"locked"`
}

type LockRequest struct {
	Locked *Flag `json:"locked" validate:"required"`
}

type CreatedResponse struct {
	ID int `json:"id"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
