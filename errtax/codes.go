// Package errtax classifies BlueZ/D-Bus failures along two independent
// axes: a permission taxonomy (what the remote device disallows) and a
// landmine taxonomy (what misbehaves the transport/daemon/link, as
// opposed to the remote GATT server). Classification never raises; every
// D-Bus failure produces exactly one Code, filed under one axis with one
// category string on that axis, which the caller can aggregate per
// attribute UUID.
package errtax

// Code mirrors the RESULT_ERR_* integer space so downstream reporting can
// keep using the same numbering scheme recon tooling has always used.
type Code int

const (
	ResultOK Code = 0
	ResultErr Code = 1
	ResultErrNotConnected Code = 2
	ResultErrNotSupported Code = 3
	ResultErrServicesNotResolved Code = 4
	ResultErrWrongState Code = 5
	ResultErrAccessDenied Code = 6
	ResultException Code = 7
	ResultErrBadArgs Code = 8
	ResultErrNotFound Code = 9
	ResultErrMethodSignatureNotExist Code = 10
	ResultErrNoDevicesFound Code = 11
	ResultErrNoBRConnect Code = 12
	ResultErrReadNotPermitted Code = 13
	ResultErrNoReply Code = 14
	ResultErrDeviceForgotten Code = 15
	ResultErrActionInProgress Code = 16
	ResultErrUnknownService Code = 17
	ResultErrUnknownObject Code = 18
	ResultErrRemoteDisconnect Code = 19
	ResultErrUnknownConnectFailure Code = 20
	ResultErrMethodCallFail Code = 21
	ResultErrNotPermitted Code = 22
	ResultErrNotAuthorized Code = 23
	ResultErrWriteNotPermitted Code = 24
	ResultErrNotifyNotPermitted Code = 25
	ResultErrIndicateNotPermitted Code = 26
)

var codeMessages = map[Code]string{
	ResultOK:                         "operation completed successfully",
	ResultErr:                        "general error occurred",
	ResultErrNotConnected:            "device not connected",
	ResultErrNotSupported:            "operation not supported",
	ResultErrServicesNotResolved:     "services not resolved",
	ResultErrWrongState:              "device in wrong state",
	ResultErrAccessDenied:            "access denied",
	ResultException:                  "unhandled exception",
	ResultErrBadArgs:                 "invalid arguments provided",
	ResultErrNotFound:                "resource not found",
	ResultErrMethodSignatureNotExist: "method signature does not exist",
	ResultErrNoDevicesFound:          "no devices found",
	ResultErrNoBRConnect:             "BR/EDR connection failed",
	ResultErrReadNotPermitted:        "read operation not permitted",
	ResultErrNoReply:                 "no reply received",
	ResultErrDeviceForgotten:         "device has been forgotten",
	ResultErrActionInProgress:        "action already in progress",
	ResultErrUnknownService:          "unknown service",
	ResultErrUnknownObject:           "unknown object",
	ResultErrRemoteDisconnect:        "remote device disconnected",
	ResultErrUnknownConnectFailure:   "unknown connection failure",
	ResultErrMethodCallFail:          "method call failed",
	ResultErrNotPermitted:            "operation not permitted",
	ResultErrNotAuthorized:           "not authorized to perform operation",
	ResultErrWriteNotPermitted:       "write operation not permitted",
	ResultErrNotifyNotPermitted:      "notify operation not permitted",
	ResultErrIndicateNotPermitted:    "indicate operation not permitted",
}

// Message returns the human-readable description for c, or "unknown error"
// for an unrecognized code.
func (c Code) Message() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return "unknown error"
}

func (c Code) String() string { return c.Message() }
