package service

import (
	"fmt"
	"strings"

	"bookspace/pkg/auth"
	"bookspace/pkg/config"
	apperrors "bookspace/pkg/errors"
)

type actor uint8

const (
	actorOwner actor = 1 << iota
	actorAdmin
)

// transitions lists, per current status, the statuses a booking may move to
// and who may move it there. Anything absent is refused.
var transitions = map[string]map[string]actor{
	config.Pending: {
		config.Approved:  actorAdmin,
		config.Rejected:  actorAdmin,
		config.Cancelled: actorOwner,
	},
	config.Approved: {
		config.Cancelled: actorAdmin | actorOwner,
	},
}

// NormalizeStatus lowercases status and maps the legacy "confirmed" to approved.
func NormalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == config.Confirmed {
		return config.Approved
	}
	return s
}

func actorOf(p auth.Principal, ownerID string) actor {
	var a actor
	if p.UserID != "" && p.UserID == ownerID {
		a |= actorOwner
	}
	if p.IsAdmin() {
		a |= actorAdmin
	}
	return a
}

func checkTransition(from, to string, who actor) error {
	allowed, ok := transitions[from][to]
	if !ok || allowed&who == 0 {
		return apperrors.Conflict(fmt.Sprintf("Booking cannot move from %s to %s", from, to))
	}
	return nil
}
