package bridge

import "fmt"

// BridgeErrorKind classifies a BridgeError.
type BridgeErrorKind uint8

const (
	BridgeTransportFailure BridgeErrorKind = iota
	BridgeTimeout
	BridgeProtocolViolation
	BridgeCycleLimit
)

func (k BridgeErrorKind) String() string {
	switch k {
	case BridgeTransportFailure:
		return "transport failure"
	case BridgeTimeout:
		return "timeout"
	case BridgeProtocolViolation:
		return "protocol violation"
	case BridgeCycleLimit:
		return "cycle limit exceeded"
	default:
		return "unknown bridge error"
	}
}

// BridgeError reports a failure in the remote CPU bridge: a transport
// problem, a malformed response, or a runaway instruction that exceeded
// CycleLimit before the remote CPU retired it.
type BridgeError struct {
	Kind BridgeErrorKind
	Err  error // underlying transport error, if any
}

func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bridge: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("bridge: %s", e.Kind)
}

func (e *BridgeError) Unwrap() error { return e.Err }
