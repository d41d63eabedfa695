package sandbox

import "strings"

// The fixed classification sets. Membership is checked against the extracted
// base name of each command, lowercased, with a dot-stripped prefix fallback
// so mkfs.ext4 matches the mkfs entry.

// alwaysAllowed are read-only shell utilities safe in every non-disabled mode.
var alwaysAllowed = newSet(
	"echo", "printf", "cat", "ls", "pwd", "cd",
	"grep", "egrep", "fgrep", "rg", "find", "locate",
	"diff", "cmp", "comm", "file", "stat", "du", "df", "tree",
	"head", "tail", "wc", "sort", "uniq", "cut", "tr", "column", "nl",
	"basename", "dirname", "realpath", "readlink", "which", "type",
	"whoami", "id", "groups", "date", "cal", "uptime", "uname", "hostname",
	"env", "printenv", "true", "false", "test", "sleep",
	"jq", "yq", "xxd", "hexdump", "strings", "less", "more",
	"md5sum", "sha1sum", "sha256sum", "sha512sum", "shasum", "cksum", "b2sum",
)

// devTools are compilers, interpreters, test runners, build systems and
// version control. Added in every mode except strict.
var devTools = newSet(
	"git", "hg", "svn",
	"make", "cmake", "ninja", "bazel",
	"gcc", "g++", "cc", "c++", "clang", "clang++", "ld", "ar", "nm", "objdump",
	"go", "gofmt", "cargo", "rustc", "rustfmt",
	"python", "python3", "node", "deno", "bun", "ruby", "perl", "php",
	"java", "javac", "kotlin", "kotlinc", "dotnet", "swift",
	"tsc", "esbuild", "vite", "webpack",
	"pytest", "tox", "jest", "vitest", "mocha", "rspec", "phpunit",
	"tar", "gzip", "gunzip", "bzip2", "xz", "zip", "unzip", "zstd",
	"sed", "awk", "patch", "tee",
	"cp", "mv", "mkdir", "touch", "ln", "chmod", "install",
	"docker", "docker-compose", "podman", "kubectl",
	"sqlite3", "psql", "mysql",
	"vim", "nvim", "nano", "emacs",
)

// packageManagers are language and OS package managers. Added unless the
// caller disables them.
var packageManagers = newSet(
	"npm", "npx", "pnpm", "yarn", "corepack",
	"pip", "pip3", "pipx", "poetry", "uv", "conda",
	"gem", "bundle", "bundler", "composer", "mix", "rebar3",
	"apt", "apt-get", "dpkg", "dnf", "yum", "rpm", "pacman", "apk", "zypper",
	"brew", "port", "nix", "nix-env", "snap", "flatpak",
	"winget", "choco", "scoop",
)

// networkCommands reach the network. Added unless the caller disables them.
var networkCommands = newSet(
	"curl", "wget", "http", "https",
	"ssh", "scp", "sftp", "rsync",
	"ping", "ping6", "traceroute", "tracepath", "mtr",
	"dig", "nslookup", "host", "whois",
	"ftp", "telnet",
	"aws", "gcloud", "az",
)

// alwaysBlocked are destructive or privilege-sensitive commands rejected in
// every mode, including permissive: filesystem formatting, firewall, process
// and service control, user and group management, process tracing, and their
// Windows equivalents.
var alwaysBlocked = newSet(
	// filesystem / disk destruction
	"mkfs", "mkswap", "fdisk", "sfdisk", "gdisk", "cfdisk", "parted",
	"dd", "shred", "wipefs", "blkdiscard", "badblocks",
	"mount", "umount", "losetup", "cryptsetup",
	// firewall / network control
	"iptables", "ip6tables", "ebtables", "arptables", "nft",
	"ufw", "firewall-cmd", "pfctl", "route",
	// process / service / host control
	"kill", "pkill", "killall", "xkill",
	"systemctl", "service", "launchctl", "initctl", "telinit",
	"reboot", "shutdown", "halt", "poweroff", "init",
	"crontab", "at", "batch",
	// user / group management
	"useradd", "userdel", "usermod", "adduser", "deluser",
	"groupadd", "groupdel", "groupmod", "addgroup", "delgroup",
	"passwd", "chpasswd", "chsh", "chfn", "vipw", "vigr", "visudo", "su",
	// tracing / debugging other processes
	"strace", "ltrace", "ptrace", "dtrace", "dtruss", "gdb", "lldb",
	// Windows equivalents
	"format", "diskpart", "chkdsk", "cipher", "sdelete",
	"netsh", "reg", "regedit", "sc", "taskkill", "tskill",
	"bcdedit", "wevtutil", "schtasks",
	"net", "runas",
)

// newSet builds a membership set from its arguments.
func newSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// inSet reports whether name is in s, either exactly or by its dot-stripped
// prefix (mkfs.ext4 -> mkfs).
func inSet(s map[string]struct{}, name string) bool {
	if _, ok := s[name]; ok {
		return true
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		if _, ok := s[name[:i]]; ok {
			return true
		}
	}
	return false
}
