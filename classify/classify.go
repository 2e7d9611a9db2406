// Package classify resolves a device's aggregated per-attribute error
// codes into the final permission/landmine category assignment. It is
// grounded line-for-line on device_le.py's _classify_errors: given every
// RESULT_ERR_* code observed for one attribute, pick at most one
// permission category and at most one landmine category, applying the
// same fixed precedence order regardless of how many codes were seen or
// what order they arrived in.
package classify

import "github.com/Mauddib28/bleep-tool-sub001/errtax"

// codeCategory maps a RESULT_ERR_* code to the axis/category it belongs
// to. Codes with no entry here never resolve to a named category on
// either axis and are left for the caller to park as in_review.
type codeCategory struct {
	axis     errtax.Axis
	category string
}

var codeCategories = map[errtax.Code]codeCategory{
	errtax.ResultErrReadNotPermitted:     {errtax.AxisPermission, errtax.CategoryReadNotPermitted},
	errtax.ResultErrWriteNotPermitted:    {errtax.AxisPermission, errtax.CategoryWriteNotPermitted},
	errtax.ResultErrNotifyNotPermitted:   {errtax.AxisPermission, errtax.CategoryNotifyNotPermitted},
	errtax.ResultErrIndicateNotPermitted: {errtax.AxisPermission, errtax.CategoryIndicateNotPermitted},
	errtax.ResultErrNotAuthorized:        {errtax.AxisPermission, errtax.CategoryRequiresAuth},
	errtax.ResultErrAccessDenied:         {errtax.AxisPermission, errtax.CategoryRequiresAuth},
	errtax.ResultErrNotSupported:         {errtax.AxisPermission, errtax.CategoryNotSupported},

	errtax.ResultErrNoReply:               {errtax.AxisLandmine, errtax.CategoryNoReply},
	errtax.ResultErrRemoteDisconnect:       {errtax.AxisLandmine, errtax.CategoryRemoteDisconnect},
	errtax.ResultErrNotConnected:           {errtax.AxisLandmine, errtax.CategoryRemoteDisconnect},
	errtax.ResultErrActionInProgress:       {errtax.AxisLandmine, errtax.CategoryActionInProgress},
	errtax.ResultErrUnknownConnectFailure:  {errtax.AxisLandmine, errtax.CategoryUnknownFailure},
	errtax.ResultErrMethodCallFail:         {errtax.AxisLandmine, errtax.CategoryOtherError},
	// errtax.ResultErrNotPermitted is handled specially in Classify below
	// since its category depends on the attribute kind.
}

// permissionPrecedence is the fixed order device_le.py's _classify_errors
// checks permission categories in: the first one present in the observed
// code set wins, regardless of how many others were also seen.
var permissionPrecedence = []string{
	errtax.CategoryReadNotPermitted,
	errtax.CategoryRequiresAuth,
	errtax.CategoryNotSupported,
	errtax.CategoryWriteNotPermitted,
	errtax.CategoryNotifyNotPermitted,
	errtax.CategoryIndicateNotPermitted,
}

// landminePrecedence is the fixed order for the landmine axis.
var landminePrecedence = []string{
	errtax.CategoryNoReply,
	errtax.CategoryRemoteDisconnect,
	errtax.CategoryUnknownFailure,
	errtax.CategoryActionInProgress,
	errtax.CategoryOtherError,
}

// Classify resolves the set of RESULT_ERR_* codes observed for a single
// GATT attribute (of the given kind) into at most one permission category
// and at most one landmine category. A nil return on either side means no
// code observed for that attribute maps to that axis; the caller should
// park the attribute's UUID in the in_review/uncategorized bucket when
// codes were seen but neither axis resolved.
func Classify(codes []errtax.Code, kind errtax.ObjectKind) (perm, mine *string) {
	permSeen := map[string]bool{}
	mineSeen := map[string]bool{}

	for _, code := range codes {
		if code == errtax.ResultErrNotPermitted {
			// Generic NotPermitted resolves like errtax.Classify's live
			// path: descriptors default to notify_not_permitted, every
			// other kind to write_not_permitted.
			if kind == errtax.KindDescriptor {
				permSeen[errtax.CategoryNotifyNotPermitted] = true
			} else {
				permSeen[errtax.CategoryWriteNotPermitted] = true
			}
			continue
		}
		cc, ok := codeCategories[code]
		if !ok {
			continue
		}
		category := cc.category
		switch cc.axis {
		case errtax.AxisPermission:
			permSeen[category] = true
		case errtax.AxisLandmine:
			mineSeen[category] = true
		}
	}

	perm = firstOf(permissionPrecedence, permSeen)
	mine = firstOf(landminePrecedence, mineSeen)
	return perm, mine
}

func firstOf(precedence []string, seen map[string]bool) *string {
	for _, category := range precedence {
		if seen[category] {
			c := category
			return &c
		}
	}
	return nil
}
