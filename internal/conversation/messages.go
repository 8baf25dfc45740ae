package conversation

const (
	CmdStart      = "/hi_rise"
	CmdAdmin      = "/admin"
	CmdSetTarget  = "/settarget"
	CmdShowTarget = "/showtarget"
	CmdSendTarget = "/sendtarget"

	ChoiceUploadPDF = "Upload PDF"
	ChoicePasteText = "Paste Text"
	ChoiceFindWeb   = "Ask Bot to Find Lesson"

	ChoiceAdminSend     = "Send Message to Target"
	ChoiceAdminShow     = "Show Target"
	ChoiceAdminTarget   = "Set Target"
	ChoiceAdminTemplate = "Set Template Path"
	ChoiceAdminExit     = "Exit Admin"
)

var (
	startKeyboard = [][]string{{ChoiceUploadPDF}, {ChoicePasteText}, {ChoiceFindWeb}}
	adminKeyboard = [][]string{{ChoiceAdminSend}, {ChoiceAdminShow}, {ChoiceAdminTarget}, {ChoiceAdminTemplate}, {ChoiceAdminExit}}
)

const (
	msgWelcome        = "Hi! For which lesson shall we create a lesson plan today? Choose how you'd like to provide the lesson:"
	msgAskPDF         = "Please upload the lesson PDF as a document now (attach as Telegram Document)."
	msgAskText        = "Please paste the chapter text now."
	msgAskGrade       = "Okay, which Grade? (e.g., Grade 6)"
	msgAskSubject     = "Which Subject? (e.g., Mathematics, Science, English)"
	msgAskChapter     = "Which Chapter name or number should I search for?"
	msgConfirmText    = "I detected pasted text. Reply 'Yes' to confirm generation."
	msgCancelled      = "Cancelled. Send /hi_rise to begin again."
	msgHelp           = "Send /hi_rise to start the lesson-plan flow, or upload a .docx template."
	msgFromText       = "Generating lesson plan from pasted text..."
	msgFromPDF        = "PDF received. Generating lesson plan..."
	msgSearching      = "Searching web for: %s"
	msgPhoto          = "Photo received. OCR is not enabled in this deployment. Please upload a PDF or paste text."
	msgTemplateSaved  = "Template uploaded and saved for your session. Now upload PDF, paste text, or use /hi_rise to start again."
	msgOtherDocument  = "Document received. If this is a PDF for lesson content, please choose 'Upload PDF' first. If this is a .docx template, it has been saved."
	msgDownloadFailed = "Failed to download file: %v"
	msgPDFFailed      = "PDF extraction failed: %v"
	msgNoTemplate     = "Template not found on server. Please upload a .docx template or set DEFAULT_TEMPLATE_PATH."
	msgSendFailed     = "Failed to send generated file: %v"
	msgGenerated      = "Lesson plan generated ✅"
	msgFailed         = "Could not generate the lesson plan: %v"

	msgUnauthorized      = "Unauthorized"
	msgAdminMenu         = "Admin menu, choose an action:"
	msgAdminAskMessage   = "Please send the message you want to forward to the target (single message)."
	msgAdminAskTarget    = "Send the chat_id to set as runtime target (digits only)."
	msgAdminAskTemplate  = "Send the template path or URL (file path, http(s):// or s3://bucket/key) to use as your template."
	msgAdminExit         = "Exiting admin menu."
	msgAdminUnknown      = "Unknown admin choice."
	msgTargetSet         = "Runtime target set to: %d"
	msgTargetInvalid     = "Invalid chat_id. Digits only."
	msgTargetUsage       = "Usage: /settarget <chat_id>"
	msgSendUsage         = "Usage: /sendtarget <message>"
	msgCurrentTarget     = "Current target: %s"
	msgNoTarget          = "No target set. Use Set Target or /settarget <chat_id>."
	msgSentTo            = "Message sent to %d"
	msgTemplatePathSet   = "Admin template path set to: %s"
	msgTemplatePathUnset = "Path does not exist: %s"
)

const (
	defaultPDFTitle  = "Lesson"
	defaultTextTitle = "Pasted Lesson"
	searchSuffix     = "summary lesson"
)
