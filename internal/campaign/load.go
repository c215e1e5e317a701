package campaign

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Load reads a campaign intent file from disk, applies defaults and
// validates it.
func Load(path string) (*Intent, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse campaign file %s: %w", path, diags)
	}
	return decode(path, hclFile.Body)
}

// Parse decodes an intent from in-memory HCL source. The filename is only
// used in diagnostics.
func Parse(src []byte, filename string) (*Intent, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse campaign source %s: %w", filename, diags)
	}
	return decode(filename, hclFile.Body)
}

func decode(name string, body hcl.Body) (*Intent, error) {
	var doc file
	if diags := gohcl.DecodeBody(body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode campaign file %s: %w", name, diags)
	}
	if len(doc.Campaigns) != 1 {
		return nil, fmt.Errorf("campaign file %s must define exactly one campaign block, found %d", name, len(doc.Campaigns))
	}
	intent := doc.Campaigns[0]
	intent.normalize()
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	return intent, nil
}
