package ciphercontext

// Mode names the seven block-cipher modes of operation the context can
// drive. Dispatch is an exhaustive switch over this closed set rather
// than a string-keyed registry.
type Mode int

const (
	ECB Mode = iota
	CBC
	PCBC
	CFB
	OFB
	CTR
	RandomDelta
)

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	case PCBC:
		return "PCBC"
	case CFB:
		return "CFB"
	case OFB:
		return "OFB"
	case CTR:
		return "CTR"
	case RandomDelta:
		return "RandomDelta"
	default:
		return "Unknown"
	}
}

// requiresIV reports whether mode needs a non-empty IV at construction.
// ECB is the sole exception.
func (m Mode) requiresIV() bool {
	return m != ECB
}
