package message

import (
	"encoding/json"
	"fmt"
)

// Encode serializes msg to its wire payload. Every Message struct in
// messages.go already carries complete json tags, so the payload is plain
// JSON rather than a generated protobuf encoding; there is no
// peermanagement/proto package in this tree to encode against.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode deserializes a wire payload into the concrete Message for msgType.
func Decode(msgType MessageType, data []byte) (Message, error) {
	msg, err := newMessage(msgType)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %T: %w", msg, err)
		}
	}
	return msg, nil
}

// newMessage allocates the zero value for a message type, used as the
// unmarshal target in Decode.
func newMessage(msgType MessageType) (Message, error) {
	switch msgType {
	case TypePing:
		return &Ping{}, nil
	case TypeManifests:
		return &Manifests{}, nil
	case TypeCluster:
		return &Cluster{}, nil
	case TypeEndpoints:
		return &Endpoints{}, nil
	case TypeTransaction:
		return &Transaction{}, nil
	case TypeTransactions:
		return &Transactions{}, nil
	case TypeGetLedger:
		return &GetLedger{}, nil
	case TypeLedgerData:
		return &LedgerData{}, nil
	case TypeProposeLedger:
		return &ProposeSet{}, nil
	case TypeStatusChange:
		return &StatusChange{}, nil
	case TypeHaveSet:
		return &HaveTransactionSet{}, nil
	case TypeValidation:
		return &Validation{}, nil
	case TypeGetObjects:
		return &GetObjectByHash{}, nil
	case TypeValidatorList:
		return &ValidatorList{}, nil
	case TypeSquelch:
		return &Squelch{}, nil
	case TypeValidatorListCollection:
		return &ValidatorListCollection{}, nil
	case TypeProofPathReq:
		return &ProofPathRequest{}, nil
	case TypeProofPathResponse:
		return &ProofPathResponse{}, nil
	case TypeReplayDeltaReq:
		return &ReplayDeltaRequest{}, nil
	case TypeReplayDeltaResponse:
		return &ReplayDeltaResponse{}, nil
	case TypeHaveTransactions:
		return &HaveTransactions{}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %d", msgType)
	}
}
