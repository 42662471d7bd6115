package domain

import (
	"context"
	"time"
)

// PartRepository persists parts.
type PartRepository interface {
	// Insert stores a new part and sets its ID.
	Insert(ctx context.Context, p *Part) error
	// FindByCode returns NotFoundError when no part has the code.
	FindByCode(ctx context.Context, assetCode string) (*Part, error)
	// IDByCode resolves an asset code to the internal id.
	IDByCode(ctx context.Context, assetCode string) (int64, error)
	List(ctx context.Context, filter PartFilter) ([]*Part, error)
	// Update applies a normalized patch and stamps updated_at in the same
	// statement. It returns the number of rows affected.
	Update(ctx context.Context, assetCode string, patch PartPatch, now time.Time) (int64, error)
}

// AssemblyRepository persists assemblies and their items.
type AssemblyRepository interface {
	Insert(ctx context.Context, a *Assembly) error
	FindByCode(ctx context.Context, code string) (*Assembly, error)
	IDByCode(ctx context.Context, code string) (int64, error)
	List(ctx context.Context, filter AssemblyFilter) ([]*Assembly, error)
	// Update returns the number of rows affected.
	Update(ctx context.Context, code string, u AssemblyUpdate, now time.Time) (int64, error)

	InsertItem(ctx context.Context, assemblyID, partID int64, in AssemblyItemInput) (int64, error)
	// DeleteItem removes an item only when it belongs to assemblyID.
	DeleteItem(ctx context.Context, assemblyID, itemID int64) (int64, error)
	// ListItems returns every item when limit is negative.
	ListItems(ctx context.Context, assemblyID int64, limit int) ([]*AssemblyItem, error)
}

// ToolingListRepository persists tooling lists and their items.
type ToolingListRepository interface {
	Insert(ctx context.Context, l *ToolingList) error
	FindByCode(ctx context.Context, code string) (*ToolingList, error)
	IDByCode(ctx context.Context, code string) (int64, error)
	List(ctx context.Context, filter ToolingListFilter) ([]*ToolingList, error)
	Update(ctx context.Context, code string, u ToolingListUpdate, now time.Time) (int64, error)
	Touch(ctx context.Context, listID int64, now time.Time) error

	InsertItem(ctx context.Context, listID, assemblyID int64, toolNo string, qty float64, note *string) (int64, error)
	DeleteItem(ctx context.Context, listID, itemID int64) (int64, error)
	DeleteAllItems(ctx context.Context, listID int64) error
	ListItems(ctx context.Context, listID int64, limit int) ([]*ToolingListItem, error)
}

// OperationLogRepository is append-only.
type OperationLogRepository interface {
	Append(ctx context.Context, entry *OperationLog) error
	ListByTarget(ctx context.Context, targetType, targetCode string, limit int) ([]*OperationLog, error)
}

// Labels maps dictionary codes to display labels.
type Labels struct {
	Layers     map[string]string `json:"layers"`
	Categories map[string]string `json:"categories"`
	Statuses   map[string]string `json:"statuses"`
}

// DictionaryRepository reads the persisted dictionary tables.
type DictionaryRepository interface {
	Labels(ctx context.Context) (*Labels, error)
}

// CodeIssuer hands out public codes from a namespace sequence. It runs on
// the caller's transaction and is only available inside Store.Update.
type CodeIssuer interface {
	Issue(ctx context.Context, namespace string) (string, error)
}

// Repositories bundles the repositories bound to one unit of work.
type Repositories struct {
	Parts        PartRepository
	Assemblies   AssemblyRepository
	ToolingLists ToolingListRepository
	Logs         OperationLogRepository
	Dictionary   DictionaryRepository
	Codes        CodeIssuer // nil outside Store.Update
}

// Store scopes repository access. Update runs fn inside one write
// transaction that commits only if fn returns nil; View runs fn without a
// transaction. The context handed to fn must be used for every repository
// call: once the transaction has begun it is no longer cancelable.
type Store interface {
	Update(ctx context.Context, fn func(context.Context, Repositories) error) error
	View(ctx context.Context, fn func(context.Context, Repositories) error) error
}
