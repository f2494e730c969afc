package constant

// AsciiArtLogo is the application's ASCII art banner.
const AsciiArtLogo = `                              _              _
 _ __ _____      _____ _ __ ___ | |__   ___  __| |
| '_ ` + "`" + ` _ \ \ /\ / / _ \ '_ ` + "`" + ` _ \| '_ \ / _ \/ _` + "`" + ` |
| | | | | \ V  V /  __/ | | | | | |_) |  __/ (_| |
|_| |_| |_|\_/\_/ \___|_| |_| |_|_.__/ \___|\__,_|`
