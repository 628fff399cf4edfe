// Package acl implements a store-backed access control service.
//
// A grant is stored under the credential identifier as the list of
// identity addresses allowed to exercise the rule. This is a reduced
// version of a full distributed access control chain: the auction ledger
// only ever needs to distinguish the operator from everyone else.
package acl

import (
	"encoding/json"

	"github.com/gavelchain/gavel/core/access"
	"github.com/gavelchain/gavel/core/store"
	"golang.org/x/xerrors"
)

// Service is an access control service that stores the granted
// identities directly in the ledger state.
//
// - implements access.Service
type Service struct{}

// NewService creates a new access control service.
func NewService() Service {
	return Service{}
}

type grants map[string][]string

// Match implements access.Service. It returns nil when every identity
// has been granted the rule of the credential.
func (srvc Service) Match(str store.Readable, creds access.Credential, idents ...access.Identity) error {
	stored, err := srvc.load(str, creds.GetID())
	if err != nil {
		return xerrors.Errorf("failed to load grants: %v", err)
	}

	allowed := stored[creds.GetRule()]

	for _, ident := range idents {
		if !contains(allowed, ident) {
			return xerrors.Errorf("rule '%s' is not granted to %v", creds.GetRule(), ident)
		}
	}

	return nil
}

// Grant implements access.Service. It stores the identities as allowed
// for the rule of the credential.
func (srvc Service) Grant(snap store.Snapshot, creds access.Credential, idents ...access.Identity) error {
	stored, err := srvc.load(snap, creds.GetID())
	if err != nil {
		return xerrors.Errorf("failed to load grants: %v", err)
	}

	allowed := stored[creds.GetRule()]

	for _, ident := range idents {
		if !contains(allowed, ident) {
			text, err := ident.MarshalText()
			if err != nil {
				return xerrors.Errorf("failed to marshal identity: %v", err)
			}

			allowed = append(allowed, string(text))
		}
	}

	stored[creds.GetRule()] = allowed

	buffer, err := json.Marshal(stored)
	if err != nil {
		return xerrors.Errorf("failed to marshal grants: %v", err)
	}

	err = snap.Set(creds.GetID(), buffer)
	if err != nil {
		return xerrors.Errorf("failed to store grants: %v", err)
	}

	return nil
}

func (srvc Service) load(str store.Readable, key []byte) (grants, error) {
	buffer, err := str.Get(key)
	if err != nil {
		return nil, xerrors.Errorf("failed to read store: %v", err)
	}

	stored := grants{}

	if len(buffer) > 0 {
		err = json.Unmarshal(buffer, &stored)
		if err != nil {
			return nil, xerrors.Errorf("failed to unmarshal grants: %v", err)
		}
	}

	return stored, nil
}

func contains(allowed []string, ident access.Identity) bool {
	text, err := ident.MarshalText()
	if err != nil {
		return false
	}

	for _, value := range allowed {
		if value == string(text) {
			return true
		}
	}

	return false
}
