package advertise

const (
	ServiceType = "_linkmond._tcp"
	Domain      = "local."

	// StreamPath is published in TXT so browsers can find the event stream.
	StreamPath = "/ws/links"
)

// TxtRecords returns the TXT entries published with the service.
func TxtRecords(version string) []string {
	return []string{
		"version=" + version,
		"path=" + StreamPath,
	}
}
