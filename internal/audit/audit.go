package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 操作名
const (
	ActionAddProject    = "add_project"
	ActionEditProject   = "edit_project"
	ActionDeleteProject = "delete_project"
	ActionAddHost       = "add_host"
	ActionEditHost      = "edit_host"
	ActionDeleteHost    = "delete_host"
	ActionImport        = "import"
)

// Entry 一次已落盘（或落盘失败）的修改
type Entry struct {
	Action  string
	Project string
	Host    string
	Err     error
}

// Journal 变更日志：每次保存追加一行 JSON
type Journal struct {
	logger  *zap.Logger
	file    *os.File
	session string
}

// Nop 返回不写任何内容的 Journal
func Nop() *Journal {
	return &Journal{logger: zap.NewNop()}
}

// Open 以追加方式打开 path，目录不存在时创建
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("打开变更日志失败: %w", err)
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.LevelKey = ""
	encoderCfg.CallerKey = ""
	encoderCfg.StacktraceKey = ""
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(f), zapcore.InfoLevel)
	session := uuid.NewString()
	return &Journal{
		logger:  zap.New(core).With(zap.String("session", session)),
		file:    f,
		session: session,
	}, nil
}

// Session 本进程的会话 ID
func (j *Journal) Session() string { return j.session }

// Record 写入一行并立即 Sync，进程异常退出时也能落盘
func (j *Journal) Record(e Entry) {
	fields := []zap.Field{zap.String("action", e.Action), zap.String("project", e.Project)}
	if e.Host != "" {
		fields = append(fields, zap.String("host", e.Host))
	}
	if e.Err != nil {
		fields = append(fields, zap.String("status", "failure"), zap.String("err", e.Err.Error()))
	} else {
		fields = append(fields, zap.String("status", "success"))
	}
	j.logger.Info("change", fields...)
	_ = j.logger.Sync()
}

// Close 关闭日志文件
func (j *Journal) Close() error {
	if j.file == nil {
		return nil
	}
	return j.file.Close()
}
