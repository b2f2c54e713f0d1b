package cache

import "time"

// Region is a named subdivision of cached backend data.
type Region string

const (
	RegionProfile       Region = "profile"
	RegionStats         Region = "stats"
	RegionOrders        Region = "orders"
	RegionServices      Region = "services"
	RegionReviews       Region = "reviews"
	RegionPhotos        Region = "photos"
	RegionBusinessHours Region = "businessHours"
	RegionDeliveryZones Region = "deliveryZones"
	RegionEarnings      Region = "earnings"
	RegionNotifications Region = "notifications"
)

// Trigger is an external event that forces a background refresh of a region
// regardless of TTL.
type Trigger string

const (
	TriggerFocus     Trigger = "focus"
	TriggerReconnect Trigger = "reconnect"
	TriggerMount     Trigger = "mount"
)

// Policy is the freshness contract of a region: how long cached data stays
// fresh, and which external events refresh it early.
type Policy struct {
	TTL      time.Duration
	Triggers []Trigger
}

// DefaultKeepUnused is how long an entry survives with no readers before
// being evicted by Sweep.
const DefaultKeepUnused = 60 * time.Second

// policies assigns each region its TTL and refetch triggers. Live order and
// stat data turn over in well under a minute; business hours barely move.
var policies = map[Region]Policy{
	RegionProfile:       {TTL: 5 * time.Minute, Triggers: []Trigger{TriggerMount, TriggerReconnect}},
	RegionStats:         {TTL: 30 * time.Second, Triggers: []Trigger{TriggerFocus, TriggerReconnect, TriggerMount}},
	RegionOrders:        {TTL: 45 * time.Second, Triggers: []Trigger{TriggerFocus, TriggerReconnect, TriggerMount}},
	RegionServices:      {TTL: 10 * time.Minute, Triggers: []Trigger{TriggerMount}},
	RegionReviews:       {TTL: 5 * time.Minute, Triggers: []Trigger{TriggerMount}},
	RegionPhotos:        {TTL: 15 * time.Minute, Triggers: []Trigger{TriggerMount}},
	RegionBusinessHours: {TTL: time.Hour, Triggers: []Trigger{TriggerMount}},
	RegionDeliveryZones: {TTL: 30 * time.Minute, Triggers: []Trigger{TriggerMount}},
	RegionEarnings:      {TTL: 2 * time.Minute, Triggers: []Trigger{TriggerFocus, TriggerMount}},
	RegionNotifications: {TTL: time.Minute, Triggers: []Trigger{TriggerFocus, TriggerReconnect, TriggerMount}},
}

// PolicyFor returns the freshness policy of a region. Unknown regions get a
// conservative one-minute TTL with mount-only refresh.
func PolicyFor(region Region) Policy {
	if p, ok := policies[region]; ok {
		return p
	}
	return Policy{TTL: time.Minute, Triggers: []Trigger{TriggerMount}}
}

// RefreshesOn reports whether the region's policy reacts to the trigger.
func (p Policy) RefreshesOn(t Trigger) bool {
	for _, trigger := range p.Triggers {
		if trigger == t {
			return true
		}
	}
	return false
}
