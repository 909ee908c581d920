package errors

//revive:disable:var-naming

// ERR is the application error code carried by every *Error.
type ERR int32

const (
	ERR_UNKNOWN             ERR = 0
	ERR_INVALID_ARGUMENT    ERR = 1
	ERR_INVALID_SORT_ORDER  ERR = 2
	ERR_INVALID_DATE        ERR = 3
	ERR_NOT_FOUND           ERR = 4
	ERR_PROCESSING          ERR = 5
	ERR_CONFIGURATION       ERR = 6
	ERR_CONTEXT             ERR = 7
	ERR_CONTEXT_CANCELED    ERR = 8
	ERR_UNAUTHORIZED        ERR = 9
	ERR_ERROR               ERR = 10
	ERR_SERVICE_UNAVAILABLE ERR = 50
	ERR_SERVICE_ERROR       ERR = 59
	ERR_STORAGE_UNAVAILABLE ERR = 60
	ERR_STORAGE_ERROR       ERR = 69
)

var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	2:  "INVALID_SORT_ORDER",
	3:  "INVALID_DATE",
	4:  "NOT_FOUND",
	5:  "PROCESSING",
	6:  "CONFIGURATION",
	7:  "CONTEXT",
	8:  "CONTEXT_CANCELED",
	9:  "UNAUTHORIZED",
	10: "ERROR",
	50: "SERVICE_UNAVAILABLE",
	59: "SERVICE_ERROR",
	60: "STORAGE_UNAVAILABLE",
	69: "STORAGE_ERROR",
}

func (x ERR) String() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return "UNKNOWN"
}
