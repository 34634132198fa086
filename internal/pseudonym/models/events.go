package models

import "selfid/pkg/domain"

// EventType names a registry event on the wire and in the outbox.
type EventType string

const (
	EventIdentityVerified EventType = "identity_verified"
	EventIdentityInserted EventType = "identity_inserted"
	EventIdentityRemoved  EventType = "identity_removed"
	EventVerifierUpdated  EventType = "verifier_updated"
	EventStoragePurged    EventType = "storage_purged"
	EventContractUpgraded EventType = "contract_upgraded"
)

// Event is a successful state change. Every event carries the block height
// it happened at.
type Event interface {
	Type() EventType
	Height() domain.BlockHeight
}

type IdentityVerified struct {
	Verifier  domain.AccountID   `json:"verifier"`
	Pseudonym string             `json:"pseudonym"`
	Account   domain.AccountID   `json:"account"`
	At        domain.BlockHeight `json:"at"`
}

type IdentityInserted struct {
	Account   domain.AccountID   `json:"account"`
	Pseudonym string             `json:"pseudonym"`
	At        domain.BlockHeight `json:"at"`
}

type IdentityRemoved struct {
	Account   domain.AccountID   `json:"account"`
	Pseudonym string             `json:"pseudonym"`
	At        domain.BlockHeight `json:"at"`
}

type VerifierUpdated struct {
	Who     domain.AccountID   `json:"who"`
	Removed bool               `json:"removed"`
	At      domain.BlockHeight `json:"at"`
}

type StoragePurged struct {
	At domain.BlockHeight `json:"at"`
}

type ContractUpgraded struct {
	NewCodeHash domain.CodeHash    `json:"new_code_hash"`
	At          domain.BlockHeight `json:"at"`
}

func (IdentityVerified) Type() EventType { return EventIdentityVerified }
func (IdentityInserted) Type() EventType { return EventIdentityInserted }
func (IdentityRemoved) Type() EventType  { return EventIdentityRemoved }
func (VerifierUpdated) Type() EventType  { return EventVerifierUpdated }
func (StoragePurged) Type() EventType    { return EventStoragePurged }
func (ContractUpgraded) Type() EventType { return EventContractUpgraded }

func (e IdentityVerified) Height() domain.BlockHeight { return e.At }
func (e IdentityInserted) Height() domain.BlockHeight { return e.At }
func (e IdentityRemoved) Height() domain.BlockHeight  { return e.At }
func (e VerifierUpdated) Height() domain.BlockHeight  { return e.At }
func (e StoragePurged) Height() domain.BlockHeight    { return e.At }
func (e ContractUpgraded) Height() domain.BlockHeight { return e.At }
