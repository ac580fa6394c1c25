// Package config loads wirebus process configuration. Configuration
// comes from three layers, later ones winning: built-in defaults, an
// optional JSON file, and WIREBUS_* environment variables. The loader
// validates the merged result before handing it out, so a Config
// obtained from Load is always usable.
package config
