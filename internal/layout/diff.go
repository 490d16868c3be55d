package layout

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
)

// Op marks how a delta node applies to its base.
type Op string

const (
	OpUpdate Op = ""
	OpAdd    Op = "add"
	OpDelete Op = "delete"
)

// Delta is the structural difference between a layout and a base layout. An
// empty Delta still encodes to a root element so that it can be stored as an
// explicit "nothing overridden" value.
type Delta struct {
	XMLName xml.Name      `xml:"r"`
	Marker  string        `xml:"delta,attr"`
	Devices []DeviceDelta `xml:"d"`
}

// DeviceDelta lists device level changes. Order is the space separated
// rendering uid order, set only when the resulting order cannot be derived
// from the base.
type DeviceDelta struct {
	ID         string           `xml:"id,attr"`
	Op         Op               `xml:"op,attr,omitempty"`
	Layout     *string          `xml:"l,attr,omitempty"`
	Order      string           `xml:"order,attr,omitempty"`
	Renderings []RenderingDelta `xml:"r"`
}

// RenderingDelta lists changed attributes of one placement.
type RenderingDelta struct {
	UID         string  `xml:"uid,attr"`
	Op          Op      `xml:"op,attr,omitempty"`
	ID          *string `xml:"id,attr,omitempty"`
	Placeholder *string `xml:"ph,attr,omitempty"`
	Datasource  *string `xml:"ds,attr,omitempty"`
	Parameters  *string `xml:"par,attr,omitempty"`
}

const deltaMarker = "1"

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Devices) == 0
}

// XML renders the delta.
func (d Delta) XML() (string, error) {
	d.Marker = deltaMarker
	encoded, err := xml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("layout: encode delta: %w", err)
	}
	return string(encoded), nil
}

// ParseDelta decodes a delta produced by Delta.XML.
func ParseDelta(raw string) (Delta, error) {
	var out Delta
	if err := xml.Unmarshal([]byte(raw), &out); err != nil {
		return Delta{}, fmt.Errorf("%w: %v", ErrLayoutMalformed, err)
	}
	if out.Marker != deltaMarker {
		return Delta{}, fmt.Errorf("%w: not a layout delta", ErrLayoutMalformed)
	}
	return out, nil
}

// IsDelta reports whether raw holds a delta rather than a full layout.
func IsDelta(raw string) bool {
	_, err := ParseDelta(raw)
	return err == nil
}

// Diff computes the changes that turn base into current.
func Diff(current, base Layout) Delta {
	var out Delta
	for _, device := range current.Devices {
		baseDevice, ok := base.Device(device.ID)
		if !ok {
			out.Devices = append(out.Devices, addedDevice(device))
			continue
		}
		if change, changed := diffDevice(device, baseDevice); changed {
			out.Devices = append(out.Devices, change)
		}
	}
	for _, device := range base.Devices {
		if _, ok := current.Device(device.ID); !ok {
			out.Devices = append(out.Devices, DeviceDelta{ID: device.ID, Op: OpDelete})
		}
	}
	return out
}

// Apply rebuilds a layout from base and a delta computed by Diff.
func Apply(base Layout, delta Delta) Layout {
	changes := make(map[string]DeviceDelta, len(delta.Devices))
	for _, change := range delta.Devices {
		changes[change.ID] = change
	}

	var out Layout
	for _, device := range base.Devices {
		change, ok := changes[device.ID]
		if !ok {
			out.Devices = append(out.Devices, cloneDevice(device))
			continue
		}
		if change.Op == OpDelete {
			continue
		}
		out.Devices = append(out.Devices, applyDevice(device, change))
	}
	for _, change := range delta.Devices {
		if change.Op == OpAdd {
			out.Devices = append(out.Devices, applyDevice(Device{ID: change.ID}, change))
		}
	}
	return out
}

func addedDevice(device Device) DeviceDelta {
	change := DeviceDelta{ID: device.ID, Op: OpAdd}
	if device.Layout != "" {
		change.Layout = ptr(device.Layout)
	}
	for _, rendering := range device.Renderings {
		change.Renderings = append(change.Renderings, addedRendering(rendering))
	}
	return change
}

func addedRendering(r Rendering) RenderingDelta {
	return RenderingDelta{
		UID:         r.UID,
		Op:          OpAdd,
		ID:          ptr(r.ID),
		Placeholder: optional(r.Placeholder),
		Datasource:  optional(r.Datasource),
		Parameters:  optional(r.Parameters),
	}
}

func diffDevice(current, base Device) (DeviceDelta, bool) {
	change := DeviceDelta{ID: current.ID}
	changed := false
	if current.Layout != base.Layout {
		change.Layout = ptr(current.Layout)
		changed = true
	}

	for _, rendering := range current.Renderings {
		baseRendering, ok := base.Rendering(rendering.UID)
		if !ok {
			change.Renderings = append(change.Renderings, addedRendering(rendering))
			changed = true
			continue
		}
		if update, diff := diffRendering(rendering, baseRendering); diff {
			change.Renderings = append(change.Renderings, update)
			changed = true
		}
	}
	for _, rendering := range base.Renderings {
		if _, ok := current.Rendering(rendering.UID); !ok {
			change.Renderings = append(change.Renderings, RenderingDelta{UID: rendering.UID, Op: OpDelete})
			changed = true
		}
	}

	currentOrder := uids(current.Renderings)
	if !slices.Equal(currentOrder, derivedOrder(base.Renderings, current.Renderings)) {
		change.Order = strings.Join(currentOrder, " ")
		changed = true
	}
	return change, changed
}

func diffRendering(current, base Rendering) (RenderingDelta, bool) {
	update := RenderingDelta{UID: current.UID}
	changed := false
	set := func(target **string, cur, old string) {
		if cur != old {
			*target = ptr(cur)
			changed = true
		}
	}
	set(&update.ID, current.ID, base.ID)
	set(&update.Placeholder, current.Placeholder, base.Placeholder)
	set(&update.Datasource, current.Datasource, base.Datasource)
	set(&update.Parameters, current.Parameters, base.Parameters)
	return update, changed
}

// derivedOrder is the order Apply produces without an explicit Order: base
// placements that survive, then new placements in current order.
func derivedOrder(base, current []Rendering) []string {
	present := make(map[string]bool, len(current))
	for _, r := range current {
		present[r.UID] = true
	}
	known := make(map[string]bool, len(base))
	order := make([]string, 0, len(current))
	for _, r := range base {
		known[r.UID] = true
		if present[r.UID] {
			order = append(order, r.UID)
		}
	}
	for _, r := range current {
		if !known[r.UID] {
			order = append(order, r.UID)
		}
	}
	return order
}

func applyDevice(base Device, change DeviceDelta) Device {
	out := Device{ID: base.ID, Layout: base.Layout}
	if change.Layout != nil {
		out.Layout = *change.Layout
	}

	updates := make(map[string]RenderingDelta, len(change.Renderings))
	for _, r := range change.Renderings {
		updates[r.UID] = r
	}
	for _, rendering := range base.Renderings {
		update, ok := updates[rendering.UID]
		if !ok {
			out.Renderings = append(out.Renderings, rendering)
			continue
		}
		if update.Op == OpDelete {
			continue
		}
		out.Renderings = append(out.Renderings, applyRendering(rendering, update))
	}
	for _, r := range change.Renderings {
		if r.Op == OpAdd {
			out.Renderings = append(out.Renderings, applyRendering(Rendering{UID: r.UID}, r))
		}
	}

	if change.Order != "" {
		out.Renderings = reorder(out.Renderings, strings.Fields(change.Order))
	}
	return out
}

func applyRendering(base Rendering, update RenderingDelta) Rendering {
	out := base
	assign := func(target *string, value *string) {
		if value != nil {
			*target = *value
		}
	}
	assign(&out.ID, update.ID)
	assign(&out.Placeholder, update.Placeholder)
	assign(&out.Datasource, update.Datasource)
	assign(&out.Parameters, update.Parameters)
	return out
}

func reorder(renderings []Rendering, order []string) []Rendering {
	byUID := make(map[string]Rendering, len(renderings))
	for _, r := range renderings {
		byUID[r.UID] = r
	}
	out := make([]Rendering, 0, len(renderings))
	for _, uid := range order {
		if r, ok := byUID[uid]; ok {
			out = append(out, r)
			delete(byUID, uid)
		}
	}
	for _, r := range renderings {
		if _, ok := byUID[r.UID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func cloneDevice(device Device) Device {
	device.Renderings = slices.Clone(device.Renderings)
	return device
}

func uids(renderings []Rendering) []string {
	out := make([]string, 0, len(renderings))
	for _, r := range renderings {
		out = append(out, r.UID)
	}
	return out
}

func ptr(value string) *string {
	return &value
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
