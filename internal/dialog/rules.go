// internal/dialog/rules.go
package dialog

import (
	"fmt"
	"strings"
)

// RuleKind identifies a response rule.
type RuleKind int

const (
	RuleDefault RuleKind = iota
	RuleNotImplemented
	RuleGreeting
	RuleGoodbye
	RuleThanks
	RuleRepeat
	RuleWay
	RulePhone
	RuleMenu
	RuleEventPlan
)

var ruleNames = map[RuleKind]string{
	RuleDefault:        "default",
	RuleNotImplemented: "not_implemented",
	RuleGreeting:       "greeting",
	RuleGoodbye:        "goodbye",
	RuleThanks:         "thanks",
	RuleRepeat:         "repeat",
	RuleWay:            "way",
	RulePhone:          "phone",
	RuleMenu:           "menu",
	RuleEventPlan:      "event_plan",
}

func (k RuleKind) String() string {
	if name, ok := ruleNames[k]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(k))
}

// ParseRuleKind resolves a rule name as used in intent alias configuration.
func ParseRuleKind(name string) (RuleKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range ruleNames {
		if n == name {
			return kind, nil
		}
	}
	return RuleDefault, fmt.Errorf("unknown rule %q", name)
}

// DefaultRules maps the interpreter's intent names to rules.
func DefaultRules() map[string]RuleKind {
	return map[string]RuleKind{
		"default":        RuleDefault,
		"twin_greeting":  RuleGreeting,
		"twin_goodbye":   RuleGoodbye,
		"twin_thanks":    RuleThanks,
		"twin_repeat":    RuleRepeat,
		"twin_way":       RuleWay,
		"ask_phone":      RulePhone,
		"ask_menu":       RuleMenu,
		"ask_event_plan": RuleEventPlan,
	}
}
