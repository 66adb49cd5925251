// Package graph exposes the blog over GraphQL. Operations are declared in an
// explicit table and assembled into a schema at start-up.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/graphql-go/graphql"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/auth"
	"github.com/dukerupert/inkwell/internal/middleware"
)

type Kind int

const (
	Query Kind = iota
	Mutation
)

// Policy says who may run an operation.
type Policy int

const (
	Public Policy = iota
	Authenticated
)

// Operation is one root field of the schema.
type Operation struct {
	Name        string
	Kind        Kind
	Type        graphql.Output
	Args        graphql.FieldConfigArgument
	Description string
	Policy      Policy
	Resolve     graphql.FieldResolveFn
}

// Guard resolves the caller for an Authenticated operation.
type Guard interface {
	Require(ctx context.Context) (context.Context, auth.Identity, error)
}

type Registry struct {
	ops    []Operation
	names  map[string]bool
	guard  Guard
	logger *slog.Logger
}

func NewRegistry(guard Guard, logger *slog.Logger) *Registry {
	return &Registry{names: make(map[string]bool), guard: guard, logger: logger}
}

// Register adds op to the table. Names must be unique across queries and
// mutations.
func (r *Registry) Register(op Operation) {
	if r.names[op.Name] {
		panic(fmt.Sprintf("graph: operation %q registered twice", op.Name))
	}
	r.names[op.Name] = true
	r.ops = append(r.ops, op)
}

func (r *Registry) Operations() []Operation {
	return r.ops
}

// Schema builds the executable schema from the registered operations.
func (r *Registry) Schema() (graphql.Schema, error) {
	queries := graphql.Fields{}
	mutations := graphql.Fields{}
	for _, op := range r.ops {
		field := &graphql.Field{
			Type:        op.Type,
			Args:        op.Args,
			Description: op.Description,
			Resolve:     r.wrap(op),
		}
		if op.Kind == Mutation {
			mutations[op.Name] = field
		} else {
			queries[op.Name] = field
		}
	}

	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queries}),
	}
	if len(mutations) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutations})
	}
	return graphql.NewSchema(cfg)
}

// wrap applies the operation's policy and turns returned errors into
// client-facing GraphQL errors.
func (r *Registry) wrap(op Operation) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if op.Policy == Authenticated {
			ctx, _, err := r.guard.Require(p.Context)
			if err != nil {
				return nil, r.clientError(p.Context, op.Name, err)
			}
			p.Context = ctx
		}
		if err := checkArgs(op.Args, p.Args); err != nil {
			return nil, r.clientError(p.Context, op.Name, err)
		}

		v, err := op.Resolve(p)
		if err != nil {
			return nil, r.clientError(p.Context, op.Name, err)
		}
		return v, nil
	}
}

// checkArgs rejects arguments graphql-go lets through to resolvers: Int
// literals are parsed without the 32-bit range check that variables get,
// and a non-null position must never reach a resolver as null.
func checkArgs(defs graphql.FieldConfigArgument, args map[string]any) error {
	for name, def := range defs {
		v, ok := args[name]
		if err := checkValue(name, def.Type, v, ok); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(path string, typ graphql.Input, v any, present bool) error {
	nn, required := typ.(*graphql.NonNull)
	if required {
		typ = nn.OfType
	}
	if !present || v == nil {
		if required {
			return apperr.New(apperr.Invalid, "invalid value for "+path)
		}
		return nil
	}

	switch t := typ.(type) {
	case *graphql.Scalar:
		if n, ok := v.(int); ok && t == graphql.Int && (n > math.MaxInt32 || n < math.MinInt32) {
			return apperr.New(apperr.Invalid, "invalid value for "+path)
		}
	case *graphql.InputObject:
		fields, _ := v.(map[string]any)
		for fname, f := range t.Fields() {
			fv, ok := fields[fname]
			if err := checkValue(path+"."+fname, f.Type, fv, ok); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) clientError(ctx context.Context, op string, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		r.logger.Error("resolver failed",
			"operation", op,
			"request_id", middleware.RequestID(ctx),
			"error", err,
		)
	}
	return &Error{Message: apperr.PublicMessage(err), Code: kind.Code()}
}

// Error is a resolver error carrying extensions.code.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]any {
	return map[string]any{"code": e.Code}
}
