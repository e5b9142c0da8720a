package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	switchFlagTypeName        = "switch"
	switchFlagImplicitValue   = "true"
	switchFlagAcceptedListing = "true, false, yes, no, on, off, 1, 0"
	switchFlagErrorFormat     = "invalid value %q for --%s; accepted values: %s"
	argumentTerminator        = "--"
)

var switchLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"1":     true,
	"false": false,
	"f":     false,
	"no":    false,
	"n":     false,
	"off":   false,
	"0":     false,
}

func parseSwitchLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	value, known := switchLiterals[normalized]
	return value, known
}

// switchValue is a pflag.Value for booleans that also accepts yes/no and on/off.
type switchValue struct {
	target *bool
	name   string
}

func (value *switchValue) Set(input string) error {
	parsed, known := parseSwitchLiteral(input)
	if !known {
		return fmt.Errorf(switchFlagErrorFormat, input, value.name, switchFlagAcceptedListing)
	}
	*value.target = parsed
	return nil
}

func (value *switchValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *switchValue) Type() string {
	return switchFlagTypeName
}

// registerSwitchFlag binds a switch flag that may be given bare, as
// --name=value, or as --name value when value is a recognized literal.
func registerSwitchFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&switchValue{target: target, name: name}, name, usage)
	if registered := flagSet.Lookup(name); registered != nil {
		registered.DefValue = strconv.FormatBool(false)
		registered.NoOptDefVal = switchFlagImplicitValue
	}
}

// joinSwitchArguments rewrites "--name literal" into "--name=literal" for
// switch flags so pflag does not mistake the literal for a positional argument.
func joinSwitchArguments(command *cobra.Command, arguments []string) []string {
	switchNames := make(map[string]struct{})
	collectSwitchNames(command, switchNames)
	if len(switchNames) == 0 {
		return arguments
	}
	joined := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminator {
			joined = append(joined, arguments[index:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(argument, "--")
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isSwitch := switchNames[flagName]; isSwitch {
				next := arguments[index+1]
				if _, known := parseSwitchLiteral(next); known && next != "" && !strings.HasPrefix(next, "-") {
					joined = append(joined, argument+"="+next)
					index++
					continue
				}
			}
		}
		joined = append(joined, argument)
	}
	return joined
}

func collectSwitchNames(command *cobra.Command, names map[string]struct{}) {
	if command == nil {
		return
	}
	record := func(flag *pflag.Flag) {
		if flag.Value.Type() == switchFlagTypeName {
			names[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectSwitchNames(child, names)
	}
}
