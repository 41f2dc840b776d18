package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
}

// Typesetter 负责根据字体与宽度约束将行内片段拆成行。
// 返回的行只需填写 Width/Height/Baseline/Runs（Run.X 相对行起点），
// 对齐与纵向位置由 Build 计算。
type Typesetter interface {
	LayoutLines(spans []Span, block Block) ([]Line, error)
}

// TypesetterFunc adapts a function to Typesetter.
type TypesetterFunc func(spans []Span, block Block) ([]Line, error)

func (f TypesetterFunc) LayoutLines(spans []Span, block Block) ([]Line, error) {
	return f(spans, block)
}
