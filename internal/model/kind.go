package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a module kind is not one of the four desk modules.
var ErrUnknownKind = errors.New("unknown module kind")

// ModuleKind identifies one point-of-sale module of the desk.
type ModuleKind string

const (
	KindPool       ModuleKind = "pool"
	KindSnackbar   ModuleKind = "snackbar"
	KindApparel    ModuleKind = "apparel"
	KindWristbands ModuleKind = "wristbands"
)

// AllKinds lists every module in display order.
var AllKinds = []ModuleKind{KindPool, KindSnackbar, KindApparel, KindWristbands}

// RevenueKinds lists the modules that carry money fields.
var RevenueKinds = []ModuleKind{KindPool, KindSnackbar, KindApparel}

var kindAliases = map[string]ModuleKind{
	"pool":       KindPool,
	"piscine":    KindPool,
	"snackbar":   KindSnackbar,
	"popcorn":    KindSnackbar,
	"apparel":    KindApparel,
	"maillot":    KindApparel,
	"wristbands": KindWristbands,
	"bracelets":  KindWristbands,
}

// ParseKind resolves a kind or one of its French aliases.
func ParseKind(s string) (ModuleKind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the four module kinds.
func (k ModuleKind) Valid() bool {
	switch k {
	case KindPool, KindSnackbar, KindApparel, KindWristbands:
		return true
	}
	return false
}

// CarriesRevenue is false for wristbands, which only track stock movement.
func (k ModuleKind) CarriesRevenue() bool {
	return k.Valid() && k != KindWristbands
}

// Label returns the name shown on the desk screens.
func (k ModuleKind) Label() string {
	switch k {
	case KindPool:
		return "Piscine"
	case KindSnackbar:
		return "Caisse Popcorn"
	case KindApparel:
		return "Boutique Maillot"
	case KindWristbands:
		return "Stock Bracelets"
	default:
		return string(k)
	}
}

// Provider is a mobile-money provider id.
type Provider string

const (
	ProviderOrange Provider = "orange"
	ProviderWave   Provider = "wave"
)
