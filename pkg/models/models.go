package models

import "time"

// Asset is a reference to one photo owned by an asset source. It carries
// identity and display metadata only, never pixel data.
type Asset struct {
	ID        string
	Path      string
	Width     int
	Height    int
	CreatedAt time.Time
}

// Permission is the access state of an external asset source.
type Permission int

const (
	PermissionUndetermined Permission = iota
	PermissionGranted
	PermissionLimited
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionLimited:
		return "limited"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}
