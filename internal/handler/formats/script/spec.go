package script

import "fmt"

// Document is the YAML shape of a script handler file.
//
//	event_handler:
//	  when: 'subject.objectTypeName == "Computer"'
//	  do:
//	    - 'log("info", sprintf("%v changed", subject.objectName))'
type Document struct {
	EventHandler *Spec `yaml:"event_handler"`
}

// Spec is the handler body.
type Spec struct {
	Description string `yaml:"description,omitempty"`

	// When is an optional boolean expression; false skips the steps.
	When string `yaml:"when,omitempty"`

	// Do lists expressions evaluated in order.
	Do []string `yaml:"do"`
}

// Validate checks the document structure.
func (d *Document) Validate() error {
	if d.EventHandler == nil {
		return fmt.Errorf("event_handler is required")
	}
	if len(d.EventHandler.Do) == 0 {
		return fmt.Errorf("event_handler.do must list at least one step")
	}
	for i, step := range d.EventHandler.Do {
		if step == "" {
			return fmt.Errorf("event_handler.do[%d] is empty", i)
		}
	}
	return nil
}
