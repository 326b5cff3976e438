package lookup

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// stageFile is the HCL layout of a stage definition file:
//
//	stage "route" {
//	  from               = "airports"
//	  as                 = "route"
//	  connect_from_field = "destinations"
//	  connect_to_field   = "code"
//	  start_with         = "$origin"
//	  target             = "$destination"
//	  max_depth          = 4
//	}
type stageFile struct {
	Stages []*stageBlock `hcl:"stage,block"`
	Remain hcl.Body      `hcl:",remain"`
}

type stageBlock struct {
	Name               string         `hcl:"name,label"`
	From               string         `hcl:"from"`
	As                 string         `hcl:"as"`
	ConnectFromField   string         `hcl:"connect_from_field"`
	ConnectToField     string         `hcl:"connect_to_field"`
	StartWith          hcl.Expression `hcl:"start_with"`
	Target             hcl.Expression `hcl:"target"`
	Restrict           hcl.Expression `hcl:"restrict_search_with_match,optional"`
	DepthField         *string        `hcl:"depth_field,optional"`
	MaxDepth           *int           `hcl:"max_depth,optional"`
	MaxMemoryBytes     *int64         `hcl:"max_memory_bytes,optional"`
	SingleShot         *bool          `hcl:"single_shot,optional"`
	StopAtFirstMeeting *bool          `hcl:"stop_at_first_meeting,optional"`
}

// LoadSpecFile reads a file holding exactly one stage block.
func LoadSpecFile(path string) (*Spec, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}

	return decodeStage(file.Body, path)
}

// ParseSpecHCL parses stage definition source held in memory.
func ParseSpecHCL(src []byte, filename string) (*Spec, error) {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %s", filename, diags.Error())
	}

	return decodeStage(file.Body, filename)
}

func decodeStage(body hcl.Body, name string) (*Spec, error) {
	var f stageFile
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL %s: %s", name, diags.Error())
	}

	if len(f.Stages) != 1 {
		return nil, invalid("%s must define exactly one stage block, found %d", name, len(f.Stages))
	}

	raw, err := f.Stages[0].toRaw()
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", f.Stages[0].Name, err)
	}

	return ParseSpec(raw)
}

func (b *stageBlock) toRaw() (map[string]any, error) {
	raw := map[string]any{
		"from":             b.From,
		"as":               b.As,
		"connectFromField": b.ConnectFromField,
		"connectToField":   b.ConnectToField,
	}

	exprs := map[string]hcl.Expression{
		"startWith":               b.StartWith,
		"target":                  b.Target,
		"restrictSearchWithMatch": b.Restrict,
	}

	for key, expr := range exprs {
		if expr == nil {
			continue
		}

		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return nil, invalid("%s: %s", key, diags.Error())
		}

		if val.IsNull() {
			continue
		}

		native, err := ctyToNative(val)
		if err != nil {
			return nil, invalid("%s: %v", key, err)
		}

		raw[key] = native
	}

	if b.DepthField != nil {
		raw["depthField"] = *b.DepthField
	}

	if b.MaxDepth != nil {
		raw["maxDepth"] = *b.MaxDepth
	}

	if b.MaxMemoryBytes != nil {
		raw["maxMemoryBytes"] = *b.MaxMemoryBytes
	}

	if b.SingleShot != nil {
		raw["singleShot"] = *b.SingleShot
	}

	if b.StopAtFirstMeeting != nil {
		raw["stopAtFirstMeeting"] = *b.StopAtFirstMeeting
	}

	return raw, nil
}

// ctyToNative converts a cty value to plain Go values: strings, float64,
// bool, []any and map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("converting number: %w", err)
		}

		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()

			n, err := ctyToNative(el)
			if err != nil {
				return nil, err
			}

			out = append(out, n)
		}

		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			k, el := it.Element()

			n, err := ctyToNative(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}

			out[k.AsString()] = n
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
