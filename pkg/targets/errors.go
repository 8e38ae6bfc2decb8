package targets

import "errors"

var (
	ErrRequestFailed = errors.New("targets.request_failed")
	ErrZeroAmount    = errors.New("targets.zero_amount")
	ErrNoPeriod      = errors.New("targets.no_period")
	ErrNoStaff       = errors.New("targets.no_staff")
	ErrInvalidURL    = errors.New("targets.invalid_url")
)

// Messages shown to branch managers.
const (
	MsgZeroAmount  = "Nilai target tidak boleh 0 atau kosong"
	MsgSaveFailed  = "gagal menyimpan data"
	MsgFetchFailed = "gagal memuat data"
)

// Error carries a display message and matches its Kind with errors.Is.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }
