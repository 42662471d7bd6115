package domain

import (
	"encoding/json"
	"time"
)

// Audit actions.
const (
	ActionPartAdd          = "PART_ADD"
	ActionPartUpdate       = "PART_UPDATE"
	ActionPartArchive      = "PART_ARCHIVE"
	ActionPartRestore      = "PART_RESTORE"
	ActionAssemblyAdd      = "ASM_ADD"
	ActionAssemblyUpdate   = "ASM_UPDATE"
	ActionAssemblyItemAdd  = "ASM_ITEM_ADD"
	ActionAssemblyItemDel  = "ASM_ITEM_REMOVE"
	ActionToolingAdd       = "TL_ADD"
	ActionToolingUpdate    = "TL_UPDATE"
	ActionToolingItemAdd   = "TL_ITEM_ADD"
	ActionToolingItemDel   = "TL_ITEM_REMOVE"
	ActionToolingItemsSwap = "TL_ITEMS_REPLACE"
)

// Audit target types.
const (
	TargetPart        = "PART"
	TargetAssembly    = "ASSEMBLY"
	TargetToolingList = "TOOLING_LIST"
)

// OperationLog is one append-only audit entry. Patch, Before and After hold
// JSON documents; nil means NULL.
type OperationLog struct {
	ID         int64           `json:"id"`
	Action     string          `json:"action"`
	TargetType string          `json:"target_type"`
	TargetCode string          `json:"target_code"`
	Actor      string          `json:"actor"`
	Reason     *string         `json:"reason"`
	Patch      json.RawMessage `json:"patch"`
	Before     json.RawMessage `json:"before"`
	After      json.RawMessage `json:"after"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewOperationLog builds an entry, marshalling the non-nil documents.
// Pass an untyped nil for a document that should be NULL.
func NewOperationLog(action, targetType, targetCode, actor string, reason *string, patch, before, after any) (*OperationLog, error) {
	entry := &OperationLog{
		Action:     action,
		TargetType: targetType,
		TargetCode: targetCode,
		Actor:      actor,
		Reason:     BlankToNil(reason),
	}
	var err error
	if entry.Patch, err = marshalDoc(patch); err != nil {
		return nil, err
	}
	if entry.Before, err = marshalDoc(before); err != nil {
		return nil, err
	}
	if entry.After, err = marshalDoc(after); err != nil {
		return nil, err
	}
	return entry, nil
}

func marshalDoc(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
