package forwarder

// Preset upstream pairs recognized by the "upstream" configuration key.
var (
	Quad9Primary        = "9.9.9.9:53"
	Quad9Secondary      = "149.112.112.112:53"
	CloudflarePrimary   = "1.1.1.1:53"
	CloudflareSecondary = "1.0.0.1:53"
)

// Preset resolves a named upstream preset ("quad9" or "cloudflare") to its
// (primary, secondary) address pair. ok is false for an unrecognized name.
func Preset(name string) (primary, secondary string, ok bool) {
	switch name {
	case "quad9":
		return Quad9Primary, Quad9Secondary, true
	case "cloudflare":
		return CloudflarePrimary, CloudflareSecondary, true
	default:
		return "", "", false
	}
}
