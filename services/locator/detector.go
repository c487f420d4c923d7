package locator

// directiveOrder fixes the order directives are reported in, so
// artifact output never depends on map iteration.
var directiveOrder = []string{"v-for", "v-if", "v-else-if", "v-else", "v-show"}

// Detect inspects an element's directive set for loop and conditional
// rendering markers.
//
// Description:
//
//	A locator is dynamic when a loop directive sits on its element or
//	on a strict ancestor, and conditional when a conditional-render
//	directive does. Both flags are advisory metadata for emitted
//	artifacts; they never change selector generation.
//
// Inputs:
//
//	ec - Resolved element context (attributes plus ancestor flags).
//
// Outputs:
//
//	isDynamic, isConditional - The derived flags.
//	directives - The element's own directives in fixed order, plus an
//	"ancestor:<tag>" entry when a flag came from an ancestor.
func Detect(ec ElementContext) (isDynamic, isConditional bool, directives []string) {
	for _, name := range directiveOrder {
		if _, ok := ec.Attributes[name]; !ok {
			continue
		}
		directives = append(directives, name)
		if loopDirectives[name] {
			isDynamic = true
		}
		if conditionalDirectives[name] {
			isConditional = true
		}
	}

	if ec.ParentLoop {
		isDynamic = true
	}
	if ec.ParentConditional {
		isConditional = true
	}
	if (ec.ParentLoop || ec.ParentConditional) && ec.ParentTag != "" {
		directives = append(directives, "ancestor:"+ec.ParentTag)
	}

	return isDynamic, isConditional, directives
}
