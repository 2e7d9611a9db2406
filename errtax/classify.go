package errtax

import (
	"strings"

	"github.com/godbus/dbus"
	"github.com/pkg/errors"
)

// Axis distinguishes the two independent classification dimensions a
// failed D-Bus call is filed under.
type Axis int

const (
	// AxisPermission holds failures the remote side deliberately refused
	// (read/write/notify/indicate not permitted, auth required, ...).
	AxisPermission Axis = iota
	// AxisLandmine holds failures that indicate transport/daemon/link
	// trouble rather than a deliberate remote refusal.
	AxisLandmine
)

// ObjectKind distinguishes which GATT attribute kind produced an error,
// since the same DBus message can map to a different category depending
// on whether it came from a characteristic or a descriptor operation.
type ObjectKind int

const (
	KindCharacteristic ObjectKind = iota
	KindDescriptor
	KindService
	KindDevice
)

// Permission categories (AxisPermission).
const (
	CategoryReadNotPermitted     = "read_not_permitted"
	CategoryWriteNotPermitted    = "write_not_permitted"
	CategoryNotifyNotPermitted   = "notify_not_permitted"
	CategoryIndicateNotPermitted = "indicate_not_permitted"
	CategoryRequiresAuth         = "requires_authentication"
	CategoryNotSupported         = "not_supported"
)

// Landmine categories (AxisLandmine).
const (
	CategoryNoReply         = "no_reply"
	CategoryRemoteDisconnect = "remote_disconnect"
	CategoryActionInProgress = "action_in_progress"
	CategoryUnknownFailure  = "unknown_failure"
	CategoryOtherError      = "other_error"
)

// CategoryInReview/CategoryUncategorized are the holding-area buckets for
// errors that don't confidently resolve to one of the named categories.
const (
	CategoryInReview     = "in_review"
	CategoryUncategorized = "uncategorized"
)

// Operation names which operation produced the failing call. Classify
// accepts it but does not branch on it; the generic "not permitted" error
// is disambiguated by ObjectKind alone.
type Operation string

const (
	OpRead     Operation = "read"
	OpWrite    Operation = "write"
	OpNotify   Operation = "notify"
	OpIndicate Operation = "indicate"
	OpConnect  Operation = "connect"
	OpPair     Operation = "pair"
	OpOther    Operation = "other"
)

// DBusMessageMap is the externalized substring->category fallback table,
// exposed as a mutable package var so callers running against an
// unfamiliar BlueZ build can extend it without a config file format.
var DBusMessageMap = map[string]string{
	"not connected":                  CategoryRemoteDisconnect,
	"connection attempt failed":      CategoryUnknownFailure,
	"operation already in progress":  CategoryActionInProgress,
	"authentication failed":          CategoryRequiresAuth,
	"timeout":                        CategoryNoReply,
	"read not permitted":             CategoryReadNotPermitted,
	"write not permitted":            CategoryWriteNotPermitted,
	"notify not permitted":           CategoryNotifyNotPermitted,
	"indicate not permitted":         CategoryIndicateNotPermitted,
	"not permitted":                  "",
}

var dbusErrorNameMap = map[string]Code{
	"org.freedesktop.DBus.Error.NoReply":       ResultErrNoReply,
	"org.freedesktop.DBus.Error.UnknownObject": ResultErrUnknownObject,
	"org.freedesktop.DBus.Error.UnknownMethod": ResultErrMethodSignatureNotExist,
	"org.bluez.Error.NotConnected":             ResultErrNotConnected,
	"org.bluez.Error.Failed":                   ResultErr,
	"org.bluez.Error.NotPermitted":             ResultErrNotPermitted,
	"org.bluez.Error.NotAuthorized":            ResultErrNotAuthorized,
	"org.bluez.Error.NotSupported":             ResultErrNotSupported,
	"org.bluez.Error.InProgress":               ResultErrActionInProgress,
	"org.bluez.Error.InvalidArguments":         ResultErrBadArgs,
	"org.bluez.Error.NotFound":                 ResultErrNotFound,
}

// Classification is the result of running Classify over a single D-Bus
// error: the legacy Code, which Axis it was filed under, and the category
// string within that axis.
type Classification struct {
	Code     Code
	Axis     Axis
	Category string
	Err      error
}

// DecodeCode maps a raw D-Bus error name/message pair to the legacy
// RESULT_ERR_* numbering, falling back to the message substring table and
// finally to ResultErr.
func DecodeCode(name, message string) Code {
	if code, ok := dbusErrorNameMap[name]; ok {
		return code
	}
	lower := strings.ToLower(message)
	for substr, cat := range DBusMessageMap {
		if !strings.Contains(lower, substr) {
			continue
		}
		switch cat {
		case CategoryReadNotPermitted:
			return ResultErrReadNotPermitted
		case CategoryWriteNotPermitted:
			return ResultErrWriteNotPermitted
		case CategoryNotifyNotPermitted:
			return ResultErrNotifyNotPermitted
		case CategoryIndicateNotPermitted:
			return ResultErrIndicateNotPermitted
		case CategoryRequiresAuth:
			return ResultErrAccessDenied
		case CategoryActionInProgress:
			return ResultErrActionInProgress
		case CategoryRemoteDisconnect:
			return ResultErrRemoteDisconnect
		case CategoryNoReply:
			return ResultErrNoReply
		case CategoryUnknownFailure:
			return ResultErrUnknownConnectFailure
		}
	}
	return ResultErr
}

// Classify inspects err (expected to wrap or be a *dbus.Error) and returns
// a Classification. kind disambiguates the generic NotPermitted error (op
// is not consulted),
// matching device_le.py's _classify_errors precedence: operation-specific
// message substrings are checked first, named D-Bus errors second, and an
// unrecognized failure falls into CategoryUncategorized on AxisLandmine.
func Classify(err error, kind ObjectKind, op Operation) Classification {
	name, message := dbusNameMessage(err)
	lower := strings.ToLower(message)

	// First match wins: operation-specific permission substrings.
	switch {
	case strings.Contains(lower, "write not permitted"):
		return perm(err, CategoryWriteNotPermitted)
	case strings.Contains(lower, "notify not permitted"):
		return perm(err, CategoryNotifyNotPermitted)
	case strings.Contains(lower, "indicate not permitted"):
		return perm(err, CategoryIndicateNotPermitted)
	case strings.Contains(lower, "read not permitted"):
		return perm(err, CategoryReadNotPermitted)
	}

	switch name {
	case "org.bluez.Error.NotPermitted":
		// Generic NotPermitted: descriptors default to notify_not_permitted
		// (descriptors carry CCCD-style notify configuration far more often
		// than plain reads/writes), everything else to write_not_permitted.
		if kind == KindDescriptor {
			return mkPerm(ResultErrNotifyNotPermitted, CategoryNotifyNotPermitted, err)
		}
		return mkPerm(ResultErrWriteNotPermitted, CategoryWriteNotPermitted, err)
	case "org.bluez.Error.NotAuthorized":
		return mkPerm(ResultErrNotAuthorized, CategoryRequiresAuth, err)
	case "org.bluez.Error.NotSupported":
		return mkPerm(ResultErrNotSupported, CategoryNotSupported, err)
	case "org.bluez.Error.InProgress":
		return mkMine(ResultErrActionInProgress, CategoryActionInProgress, err)
	case "org.freedesktop.DBus.Error.NoReply":
		return mkMine(ResultErrNoReply, CategoryNoReply, err)
	case "org.bluez.Error.NotConnected":
		return mkMine(ResultErrNotConnected, CategoryRemoteDisconnect, err)
	}

	if strings.Contains(lower, "not connected") || strings.Contains(lower, "disconnected") {
		return mkMine(ResultErrRemoteDisconnect, CategoryRemoteDisconnect, err)
	}

	code := DecodeCode(name, message)
	if code == ResultErr {
		return Classification{Code: code, Axis: AxisLandmine, Category: CategoryUncategorized, Err: errors.WithStack(err)}
	}
	return mkMine(code, CategoryOtherError, err)
}

func perm(err error, category string) Classification {
	code := map[string]Code{
		CategoryReadNotPermitted:     ResultErrReadNotPermitted,
		CategoryWriteNotPermitted:    ResultErrWriteNotPermitted,
		CategoryNotifyNotPermitted:   ResultErrNotifyNotPermitted,
		CategoryIndicateNotPermitted: ResultErrIndicateNotPermitted,
	}[category]
	return mkPerm(code, category, err)
}

func mkPerm(code Code, category string, err error) Classification {
	return Classification{Code: code, Axis: AxisPermission, Category: category, Err: errors.WithStack(err)}
}

func mkMine(code Code, category string, err error) Classification {
	return Classification{Code: code, Axis: AxisLandmine, Category: category, Err: errors.WithStack(err)}
}

func dbusNameMessage(err error) (name, message string) {
	var derr dbus.Error
	cause := errors.Cause(err)
	if de, ok := cause.(dbus.Error); ok {
		derr = de
	} else if de, ok := err.(dbus.Error); ok {
		derr = de
	} else {
		return "", err.Error()
	}
	name = derr.Name
	if len(derr.Body) > 0 {
		if s, ok := derr.Body[0].(string); ok {
			message = s
		}
	}
	return name, message
}
