package descriptions

// Tool descriptions with practical examples and use cases

const (
	ReadDescription = `Read the current value of every field of the loaded PDF form.

**When to use:** Before filling the form, to discover its fields, or after a write to check the result.

**Why it's useful:** Returns one record per interactive field, in page order, with the annotation id used by 'write'.

**Record format:**
• id: annotation id such as "285R" (object number followed by R)
• value: text for text and choice fields, true/false for checkboxes and radio buttons
• type: text, textarea, password, checkbox, radio, select-one or select-multiple
• name: fully qualified field name, for example "assure.nom"

**Common workflows:**
1. Discovery: read → pick the ids to fill → write
2. Verification: write → read → compare

**Best practices:** Push buttons, signatures and plain annotations have no control and are not listed.`

	WriteDescription = `Fill fields of the loaded PDF form.

**When to use:** To set text or tick boxes before saving the form.

**Why it's useful:** Assigns values by annotation id; ids that match no field are ignored instead of failing the call.

**Examples:**
• Fill a name: values = [{"id": "285R", "value": "Simon RACAUD"}]
• Tick a box: values = [{"id": "289R", "value": true}]
• Demo fill: call without values to write a sample record set

**Value rules:**
• checkbox and radio: booleans; non-empty strings and non-zero numbers also check the box
• other fields: strings; numbers and booleans are written in their text form
• read-only fields keep their value
• when an id appears twice, the first record wins

**Best practices:** Call 'read' first to get the ids of the form.`

	SaveDescription = `Export the filled PDF form.

**When to use:** Once the fields hold the wanted values.

**Why it's useful:** Writes every current field value into the document and produces a complete PDF file,
written to the output directory and embedded in the response.

**Examples:**
• Default name: call without arguments to produce newFile.pdf
• Custom name: file_name = "arret-de-travail.pdf"

**Best practices:** File names must not contain directories. Saving twice with the same name replaces the file.`

	FormInfoDescription = `Describe the loaded PDF form.

**When to use:** To know where the form comes from, its page sizes and how many fields each page carries.

**Why it's useful:** Gives an overview before reading all field values, together with the list of tools and a usage guide.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"read":      ReadDescription,
	"write":     WriteDescription,
	"save":      SaveDescription,
	"form_info": FormInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
