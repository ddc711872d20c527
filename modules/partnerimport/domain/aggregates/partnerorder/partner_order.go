package partnerorder

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the enhanced order status written by the import engine. It is a
// subset of the full order lifecycle: only the values partner feeds are
// allowed to map onto.
type Status string

const (
	StatusAwaitingInstallBooking Status = "awaiting_install_booking"
	StatusInstallBooked          Status = "install_booked"
	StatusScheduled              Status = "scheduled"
	StatusInProgress             Status = "in_progress"
	StatusOnHold                 Status = "on_hold"
	StatusAwaitingParts          Status = "awaiting_parts"
	StatusCompleted              Status = "completed"
	StatusCancelled              Status = "cancelled"
)

var knownStatuses = map[Status]struct{}{
	StatusAwaitingInstallBooking: {},
	StatusInstallBooked:          {},
	StatusScheduled:              {},
	StatusInProgress:             {},
	StatusOnHold:                 {},
	StatusAwaitingParts:          {},
	StatusCompleted:              {},
	StatusCancelled:              {},
}

func ValidStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// PartnerOrder is the slice of the Order aggregate the import engine reads
// and writes. An order is identified by (partnerID, partnerExternalID),
// which is unique across the system.
type PartnerOrder struct {
	id                   uuid.UUID
	partnerID            uuid.UUID
	partnerExternalID    string
	orderNumber          string
	clientName           string
	clientPostcode       string
	jobAddress           string
	scheduledDate        *time.Time
	status               Status
	manualStatusOverride bool
	engineerID           *uuid.UUID
	createdAt            time.Time
	updatedAt            time.Time
}

func New(partnerID uuid.UUID, partnerExternalID string, status Status) PartnerOrder {
	return PartnerOrder{
		partnerID:         partnerID,
		partnerExternalID: strings.TrimSpace(partnerExternalID),
		status:            status,
	}
}

func Hydrate(
	id uuid.UUID,
	partnerID uuid.UUID,
	partnerExternalID string,
	orderNumber string,
	clientName string,
	clientPostcode string,
	jobAddress string,
	scheduledDate *time.Time,
	status Status,
	manualStatusOverride bool,
	engineerID *uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) PartnerOrder {
	return PartnerOrder{
		id:                   id,
		partnerID:            partnerID,
		partnerExternalID:    strings.TrimSpace(partnerExternalID),
		orderNumber:          orderNumber,
		clientName:           clientName,
		clientPostcode:       clientPostcode,
		jobAddress:           jobAddress,
		scheduledDate:        scheduledDate,
		status:               status,
		manualStatusOverride: manualStatusOverride,
		engineerID:           engineerID,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

func (o PartnerOrder) ID() uuid.UUID              { return o.id }
func (o PartnerOrder) PartnerID() uuid.UUID       { return o.partnerID }
func (o PartnerOrder) PartnerExternalID() string  { return o.partnerExternalID }
func (o PartnerOrder) OrderNumber() string        { return o.orderNumber }
func (o PartnerOrder) ClientName() string         { return o.clientName }
func (o PartnerOrder) ClientPostcode() string     { return o.clientPostcode }
func (o PartnerOrder) JobAddress() string         { return o.jobAddress }
func (o PartnerOrder) ScheduledDate() *time.Time  { return o.scheduledDate }
func (o PartnerOrder) Status() Status             { return o.status }
func (o PartnerOrder) ManualStatusOverride() bool { return o.manualStatusOverride }
func (o PartnerOrder) EngineerID() *uuid.UUID     { return o.engineerID }
func (o PartnerOrder) CreatedAt() time.Time       { return o.createdAt }
func (o PartnerOrder) UpdatedAt() time.Time       { return o.updatedAt }
func (o PartnerOrder) IsZero() bool {
	return o.id == uuid.Nil && o.partnerExternalID == ""
}

func (o PartnerOrder) WithOrderNumber(v string) PartnerOrder   { o.orderNumber = v; return o }
func (o PartnerOrder) WithClientName(v string) PartnerOrder    { o.clientName = v; return o }
func (o PartnerOrder) WithClientPostcode(v string) PartnerOrder {
	o.clientPostcode = v
	return o
}
func (o PartnerOrder) WithJobAddress(v string) PartnerOrder { o.jobAddress = v; return o }
func (o PartnerOrder) WithScheduledDate(v *time.Time) PartnerOrder {
	o.scheduledDate = v
	return o
}
func (o PartnerOrder) WithEngineerID(v *uuid.UUID) PartnerOrder { o.engineerID = v; return o }
func (o PartnerOrder) WithManualStatusOverride(v bool) PartnerOrder {
	o.manualStatusOverride = v
	return o
}
func (o PartnerOrder) WithStatus(v Status) PartnerOrder { o.status = v; return o }
func (o PartnerOrder) WithID(id uuid.UUID) PartnerOrder { o.id = id; return o }
func (o PartnerOrder) WithTimestamps(createdAt, updatedAt time.Time) PartnerOrder {
	o.createdAt = createdAt
	o.updatedAt = updatedAt
	return o
}

// Patch is the set of fields an import row wants to change on an existing
// order. Nil means "leave as is"; the status field is nil whenever the
// override rules excluded it.
type Patch struct {
	OrderNumber    *string
	ClientName     *string
	ClientPostcode *string
	JobAddress     *string
	ScheduledDate  *time.Time
	Status         *Status
	EngineerID     *uuid.UUID
}

func (p Patch) IsEmpty() bool {
	return p.OrderNumber == nil &&
		p.ClientName == nil &&
		p.ClientPostcode == nil &&
		p.JobAddress == nil &&
		p.ScheduledDate == nil &&
		p.Status == nil &&
		p.EngineerID == nil
}

// Apply returns a copy of the order with the patch applied.
func (o PartnerOrder) Apply(p Patch) PartnerOrder {
	if p.OrderNumber != nil {
		o.orderNumber = *p.OrderNumber
	}
	if p.ClientName != nil {
		o.clientName = *p.ClientName
	}
	if p.ClientPostcode != nil {
		o.clientPostcode = *p.ClientPostcode
	}
	if p.JobAddress != nil {
		o.jobAddress = *p.JobAddress
	}
	if p.ScheduledDate != nil {
		d := *p.ScheduledDate
		o.scheduledDate = &d
	}
	if p.Status != nil {
		o.status = *p.Status
	}
	if p.EngineerID != nil {
		id := *p.EngineerID
		o.engineerID = &id
	}
	return o
}
