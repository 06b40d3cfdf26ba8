// 版本信息，构建时通过 -ldflags "-X neoftp/internal/pkg/version.GitCommit=..." 注入
package version

var (
	Version   = "1.0.0"
	BuildTime string
	GitCommit string
	GoVersion string
)

func GetVersion() string {
	return Version
}
