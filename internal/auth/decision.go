package auth

import (
	"github.com/hostdrop/hostdrop/internal/identity"
	"github.com/hostdrop/hostdrop/internal/settings"
)

// Decision is an allow/deny verdict with a reason safe for a 401 body.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide combines identity, API key validity, and the folder allow flags into
// a verdict for one write. A nil folder means the write targets the sandbox
// root rather than a named folder.
//
// Rules, in order: an administrator identity is always allowed. Any other
// caller needs a matching API key; a key that is merely configured, or merely
// present without matching, grants nothing. Folder writes additionally
// require both the global non-admin-write flag and the folder's own flag.
func Decide(id *identity.Identity, keyValid bool, st *settings.Settings, folder *settings.FolderEntry) Decision {
	if id != nil && id.Admin {
		return allow("administrator")
	}

	if !keyValid {
		if st.APIKey == "" {
			return deny("authorization required: no API key is configured and the caller is not an administrator")
		}
		return deny("authorization required: missing or incorrect API key")
	}

	if folder == nil {
		return allow("api key")
	}

	if !st.EnableNonAdminWrite {
		return deny("non-admin writes are disabled")
	}
	if !folder.AllowNonAdminWrite {
		return deny("folder does not accept non-admin writes")
	}

	return allow("api key")
}
