package filetype

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Kind is the role an uploaded file can play in the bot.
type Kind int

const (
	Unsupported Kind = iota
	PDF
	Template // .docx
	Text
	Image
)

func (k Kind) String() string {
	switch k {
	case PDF:
		return "pdf"
	case Template:
		return "docx"
	case Text:
		return "text"
	case Image:
		return "image"
	default:
		return "unsupported"
	}
}

// Info contains detected file type information
type Info struct {
	MIMEType  string
	Extension string
	Kind      Kind
}

// Detector handles file type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Detect classifies data by its magic bytes. The file name only breaks ties for generic
// ZIP containers, which is how some clients label .docx uploads.
func (d *Detector) Detect(data []byte, fileName string) Info {
	mtype := mimetype.Detect(data)
	info := Info{MIMEType: mtype.String(), Extension: mtype.Extension()}

	if mtype.Is("application/zip") && strings.EqualFold(filepath.Ext(fileName), ".docx") {
		log.Debug().Str("file", fileName).Msg("zip container named .docx, treating as docx")
		info.MIMEType = docxMIME
		info.Extension = ".docx"
	}

	switch {
	case mtype.Is("application/pdf"):
		info.Kind = PDF
	case info.MIMEType == docxMIME:
		info.Kind = Template
	case strings.HasPrefix(info.MIMEType, "text/plain"):
		info.Kind = Text
	case strings.HasPrefix(info.MIMEType, "image/"):
		info.Kind = Image
	default:
		info.Kind = Unsupported
	}

	log.Debug().Str("mime", info.MIMEType).Str("kind", info.Kind.String()).Str("file", fileName).Msg("detected file type")
	return info
}
