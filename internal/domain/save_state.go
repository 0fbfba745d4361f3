package domain

type SaveState string

const (
	SaveStateIdle   SaveState = "idle"
	SaveStateSaving SaveState = "saving"
	SaveStateSaved  SaveState = "saved"
	SaveStateError  SaveState = "error"
)

// DefaultSaveErrorMessage is reported when a failed save carries no message.
const DefaultSaveErrorMessage = "failed to save"

func (s SaveState) Valid() bool {
	switch s {
	case SaveStateIdle, SaveStateSaving, SaveStateSaved, SaveStateError:
		return true
	default:
		return false
	}
}

func (s SaveState) String() string {
	if s == "" {
		return string(SaveStateIdle)
	}
	return string(s)
}
