package layout

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-webedit/internal/validation"
)

// ErrLayoutMalformed is returned when a submitted or stored layout cannot be
// parsed or fails validation.
var ErrLayoutMalformed = errors.New("layout: payload malformed")

const payloadSchema = `{
  "type": "object",
  "required": ["devices"],
  "additionalProperties": false,
  "properties": {
    "devices": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "layout": {"type": "string"},
          "renderings": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["uid", "id"],
              "additionalProperties": false,
              "properties": {
                "uid": {"type": "string", "minLength": 1, "pattern": "^\\S+$"},
                "id": {"type": "string", "minLength": 1},
                "placeholder": {"type": "string"},
                "datasource": {"type": "string"},
                "parameters": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var schema = validation.MustCompileSchema("layout.json", []byte(payloadSchema))

// Layout is the rendering configuration of an item, one entry per device.
type Layout struct {
	XMLName xml.Name `json:"-" xml:"r"`
	Devices []Device `json:"devices" xml:"d"`
}

// Device binds a layout and renderings to one presentation device.
type Device struct {
	ID         string      `json:"id" xml:"id,attr"`
	Layout     string      `json:"layout,omitempty" xml:"l,attr,omitempty"`
	Renderings []Rendering `json:"renderings,omitempty" xml:"r"`
}

// Rendering is one component placed on a device. UID identifies the placement.
type Rendering struct {
	UID         string `json:"uid" xml:"uid,attr"`
	ID          string `json:"id" xml:"id,attr"`
	Placeholder string `json:"placeholder,omitempty" xml:"ph,attr,omitempty"`
	Datasource  string `json:"datasource,omitempty" xml:"ds,attr,omitempty"`
	Parameters  string `json:"parameters,omitempty" xml:"par,attr,omitempty"`
}

// ParseJSON decodes and validates the JSON layout posted by the editor.
func ParseJSON(raw string) (Layout, error) {
	if err := schema.ValidateJSON([]byte(raw)); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrLayoutMalformed, err)
	}
	var out Layout
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrLayoutMalformed, err)
	}
	if err := out.check(); err != nil {
		return Layout{}, err
	}
	return out, nil
}

// ParseXML decodes the stored layout format. An empty value is an empty layout.
func ParseXML(raw string) (Layout, error) {
	if strings.TrimSpace(raw) == "" {
		return Layout{}, nil
	}
	var out Layout
	if err := xml.Unmarshal([]byte(raw), &out); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrLayoutMalformed, err)
	}
	if err := out.check(); err != nil {
		return Layout{}, err
	}
	return out, nil
}

// XML renders the stored layout format.
func (l Layout) XML() (string, error) {
	encoded, err := xml.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("layout: encode: %w", err)
	}
	return string(encoded), nil
}

// Device returns the device with id.
func (l Layout) Device(id string) (Device, bool) {
	for _, device := range l.Devices {
		if device.ID == id {
			return device, true
		}
	}
	return Device{}, false
}

// Rendering returns the rendering placement with uid.
func (d Device) Rendering(uid string) (Rendering, bool) {
	for _, rendering := range d.Renderings {
		if rendering.UID == uid {
			return rendering, true
		}
	}
	return Rendering{}, false
}

func (l Layout) check() error {
	devices := make(map[string]struct{}, len(l.Devices))
	for _, device := range l.Devices {
		if device.ID == "" {
			return fmt.Errorf("%w: device id required", ErrLayoutMalformed)
		}
		if _, dup := devices[device.ID]; dup {
			return fmt.Errorf("%w: duplicate device %s", ErrLayoutMalformed, device.ID)
		}
		devices[device.ID] = struct{}{}

		uids := make(map[string]struct{}, len(device.Renderings))
		for _, rendering := range device.Renderings {
			if rendering.UID == "" || strings.ContainsAny(rendering.UID, " \t\r\n") {
				return fmt.Errorf("%w: device %s: invalid rendering uid %q", ErrLayoutMalformed, device.ID, rendering.UID)
			}
			if _, dup := uids[rendering.UID]; dup {
				return fmt.Errorf("%w: device %s: duplicate rendering %s", ErrLayoutMalformed, device.ID, rendering.UID)
			}
			uids[rendering.UID] = struct{}{}
		}
	}
	return nil
}
