package memscope

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Render memory image objects through pluggable output backends"
	MsgDescribeShort   = "Show the documentation of a plugin or help topic"
	MsgDecodeShort     = "Decode a JSON export and render it again"
	MsgRenderersShort  = "List the renderer bindings"
	MsgGenConfigShort  = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgPluginMore      = "Run 'memscope describe %s' for details."

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig    = "Config file (default is $XDG_CONFIG_HOME/memscope/config.toml)"
	MsgFlagImage     = "Image snapshot to analyse"
	MsgFlagFormat    = "Output format; repeat or separate with commas to fan out"
	MsgFlagOutput    = "Output file; the database path for the sqlite format"
	MsgFlagPid       = "Only include the process with this pid; repeatable"
	MsgFlagName      = "Only include processes whose name matches this regexp"
	MsgFlagCoalesce  = "Merge ranges contiguous in virtual and physical memory"
	MsgFlagDumpDir   = "Directory dumps are written to (default dump.dir)"
	MsgFlagStrict    = "Fail on values that cannot be decoded"
	MsgFlagWrite     = "Write the configuration to the user config file"
	MsgFlagCommented = "Comment out every value"

	// Status messages
	MsgVersionFormat   = "memscope version %s\n  commit: %s\n  built:  %s\n"
	MsgConfigWritten   = "Configuration written to %s\n"
	MsgDecodeSkipped   = "%d value(s) could not be decoded and are shown as summaries\n"
	MsgNoImage         = "no image snapshot given, use --image"
	MsgNoCommand       = "no command specified"
	MsgUnknownDescribe = "nothing to describe called %s, see 'memscope help topics'"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/decode-long.txt
	msgDecodeLongRaw string
	MsgDecodeLong    = strings.TrimSpace(msgDecodeLongRaw)

	//go:embed msgs/decode-example.txt
	msgDecodeExampleRaw string
	MsgDecodeExample    = strings.TrimRight(msgDecodeExampleRaw, "\n")

	//go:embed msgs/plugin-example.txt
	msgPluginExampleRaw string
	MsgPluginExample    = strings.TrimRight(msgPluginExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
