package domain

// AnalysisInput es la entrada del gateway de analisis.
// Las variantes son TextOnly, FileOnly y TextAndFile.
type AnalysisInput interface {
	analysisInput()
}

type TextOnly struct {
	Prompt string
}

type FileOnly struct {
	Data     []byte
	MIMEType string
	FileName string
}

type TextAndFile struct {
	Prompt   string
	Data     []byte
	MIMEType string
	FileName string
}

func (TextOnly) analysisInput()    {}
func (FileOnly) analysisInput()    {}
func (TextAndFile) analysisInput() {}

// NewAnalysisInput clasifica prompt y archivo en una variante.
// Sin prompt ni archivo devuelve TextOnly vacio, que se reenvia igual.
func NewAnalysisInput(prompt string, data []byte, mimeType, fileName string) AnalysisInput {
	hasFile := data != nil
	switch {
	case hasFile && prompt != "":
		return TextAndFile{Prompt: prompt, Data: data, MIMEType: mimeType, FileName: fileName}
	case hasFile:
		return FileOnly{Data: data, MIMEType: mimeType, FileName: fileName}
	default:
		return TextOnly{Prompt: prompt}
	}
}
