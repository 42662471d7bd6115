// Package application implements the inventory use cases: the part registry,
// the assembly composer and the tooling list manager. Every mutation runs in
// one store transaction together with its audit log entry.
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/tracing"
)

// CategoryValidator checks layer/category pairs. catalog.Dictionary
// implements it.
type CategoryValidator interface {
	ValidateCategory(layer string, category *string) error
}

// Options configures the services.
type Options struct {
	// Actor is recorded on every audit entry.
	Actor string
	// Tracer opens spans per operation; nil means no-op.
	Tracer trace.Tracer
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Services bundles the use cases over one store.
type Services struct {
	Parts        *PartRegistry
	Assemblies   *AssemblyComposer
	ToolingLists *ToolingListManager
	Audit        *AuditTrail
}

// New wires the services.
func New(store domain.Store, validator CategoryValidator, opts Options) *Services {
	b := &base{store: store, actor: opts.Actor, tracer: opts.Tracer, now: opts.Now}
	if b.actor == "" {
		b.actor = "unknown"
	}
	if b.tracer == nil {
		b.tracer = noop.NewTracerProvider().Tracer(tracing.ServiceName)
	}
	if b.now == nil {
		b.now = time.Now
	}
	return &Services{
		Parts:        &PartRegistry{base: b, validator: validator},
		Assemblies:   &AssemblyComposer{base: b},
		ToolingLists: &ToolingListManager{base: b},
		Audit:        &AuditTrail{base: b},
	}
}

// base holds what every service shares.
type base struct {
	store  domain.Store
	actor  string
	tracer trace.Tracer
	now    func() time.Time
}

func (b *base) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String(tracing.AttrActor, b.actor))
	return tracing.Start(ctx, b.tracer, name, attrs...)
}

// record appends an audit entry on the transaction's repositories.
func (b *base) record(ctx context.Context, r domain.Repositories, action, targetType, targetCode string, reason *string, patch, before, after any) error {
	entry, err := domain.NewOperationLog(action, targetType, targetCode, b.actor, reason, patch, before, after)
	if err != nil {
		return err
	}
	entry.CreatedAt = b.now()
	if err := r.Logs.Append(ctx, entry); err != nil {
		return err
	}
	log.Debug(log.CatAudit, "operation logged", "action", action, "target", targetCode, "actor", b.actor)
	return nil
}
