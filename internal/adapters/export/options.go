package export

// Defaults for the member-count workbook.
const (
	DefaultSheet      = "members"
	DefaultDateFormat = "yyyy-mm-dd"
)

type config struct {
	sheet      string
	dateFormat string
}

// Option applies a configuration option to WriteSeries.
type Option func(*config)

// WithSheet names the worksheet.
func WithSheet(name string) Option {
	return func(c *config) {
		if name != "" {
			c.sheet = name
		}
	}
}

// WithDateFormat sets the number format of the date column.
func WithDateFormat(format string) Option {
	return func(c *config) {
		if format != "" {
			c.dateFormat = format
		}
	}
}
