// Package gadget provides the gadget inventory and its lifecycle rules.
//
// Every gadget moves through a fixed state machine:
//
//	AVAILABLE ──▶ DEPLOYED ──▶ DESTROYED (terminal, confirmation required)
//	    │  ▲          │
//	    │  └──────────┘
//	    ▼
//	DECOMMISSIONED (terminal)
//
// Decommissioning is a policy path: any non-terminal gadget may be
// decommissioned, including a DEPLOYED one, without consulting the table.
//
// # Key Types
//
//   - Gadget: an inventory item with a generated codename
//   - Status: lifecycle status; DESTROYED and DECOMMISSIONED are terminal
//   - StatusHistoryEntry: one accepted transition, append-only
//   - Service: request-facing operations that consult the guard
//
// # Guard
//
// ValidateTransition, ProcessStatusChange and CheckDecommission are pure
// decision functions. They never persist anything; Repository.ApplyTransition
// writes the new status, the terminal timestamp and the history row in one
// transaction.
//
// # Usage
//
//	svc := gadget.NewService(gadget.ServiceDeps{
//	    Repo:    gadget.NewSQLiteRepository(db.DB),
//	    History: gadget.NewSQLiteHistoryRepository(db.DB),
//	    Broker:  confirm.New(),
//	})
//
//	g, err := svc.Create(ctx, "Pen with a concealed laser cutter")
//	ticket, err := svc.RequestSelfDestruct(ctx, g.ID)
//	_, err = svc.ConfirmSelfDestruct(ctx, g.ID, ticket.Code)
//
// # Thread Safety
//
// All exported functions and Service methods are safe for concurrent use.
package gadget
