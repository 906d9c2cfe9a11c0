package network

import (
	"encoding/json"
	"fmt"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

// RequestError describes a failed round trip to the node. StatusCode is zero
// when the request never got a response.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("node request %s %s failed: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("node request %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type announceRequest struct {
	Payload string `json:"payload"`
}

type announceResponse struct {
	Message string `json:"message"`
}

type TransactionMeta struct {
	Hash   string `json:"hash"`
	Height string `json:"height,omitempty"`
}

type AccountTransaction struct {
	Meta        TransactionMeta `json:"meta"`
	Transaction json.RawMessage `json:"transaction,omitempty"`
}

// Confirmation is a confirmed transaction reported by the feed for one
// account address.
type Confirmation struct {
	Address ledger.Address
	Hash    string
}

// feedMessage is the websocket frame carrying a confirmation:
// {"topic":"confirmedAdded/<address>","meta":{"hash":"..."}}.
type feedMessage struct {
	UID   string          `json:"uid,omitempty"`
	Topic string          `json:"topic,omitempty"`
	Meta  TransactionMeta `json:"meta"`
}

type feedSubscribeRequest struct {
	UID       string `json:"uid"`
	Subscribe string `json:"subscribe"`
}
