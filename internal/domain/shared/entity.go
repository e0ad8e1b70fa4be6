package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every table has
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// NewBaseEntity assigns a fresh ID and stamps both timestamps
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// BaseAggregateRoot adds the optimistic-lock version and the events raised
// since the aggregate was loaded. Services publish the events after commit.
type BaseAggregateRoot struct {
	BaseEntity
	Version int           `gorm:"not null;default:1" json:"version"`
	events  []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot starts at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion records a state change
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.UpdatedAt = time.Now()
}

// GetVersion returns the current version
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.events
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// PartnerAggregateRoot is an aggregate owned by one shop or service center
type PartnerAggregateRoot struct {
	BaseAggregateRoot
	PartnerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"partner_id"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
}

// NewPartnerAggregateRoot creates an aggregate owned by partnerID
func NewPartnerAggregateRoot(partnerID uuid.UUID) PartnerAggregateRoot {
	return PartnerAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), PartnerID: partnerID}
}

// SetCreatedBy records the user who created the aggregate
func (p *PartnerAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	p.CreatedBy = &userID
}
