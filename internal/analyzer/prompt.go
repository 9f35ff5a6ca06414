package analyzer

import "github.com/mokshchadha/invoice-ocr/internal/domain"

// systemPreamble prefixes every instruction prompt.
const systemPreamble = `You are an expert in analyzing invoices and business documents. Use the document image together with any extracted text to answer with high accuracy. Present the information in a clear, structured format.`

const supplierPrompt = `Process the document with high accuracy, generate the following fields and return a JSON document with the filled information:
{
  "vendorDetails": {
    "vendorName": "",
    "gstAvailability": "",
    "gstAmount": "",
    "gstInternalAmount": "",
    "gst": "",
    "address": ""
  },
  "buyerDetails": {
    "buyerName": "",
    "buyerGst": ""
  },
  "invoiceDetails": {
    "invoiceNumber": "",
    "invoiceDate": "",
    "poNumber": "",
    "totalAmount": "",
    "tcsAmount": ""
  },
  "addressDetails": {
    "billingAddress": {
      "billToName": "",
      "billToAddress": ""
    },
    "shippingAddress": {
      "shipToName": "",
      "shipToAddress": ""
    }
  },
  "transportDetails": {
    "vehicleNumber": "",
    "loadingAddress": ""
  },
  "productDetails": {
    "productName": ""
  },
  "IRN_Number": ""
}

NOTE: If the image is blurry or some information is missing then leave that part as an empty string and highlight which parts are missing and why.`

const transporterPrompt = `Process the document with high accuracy, generate the following fields and return a JSON document with the filled information:
{
  "transporterBill": {
    "invoiceNumber": "",
    "lrNumber": "",
    "vehicleNumber": "",
    "date": "",
    "amount": ""
  }
}

NOTE: If the image is blurry or some information is missing then leave that part as an empty string and highlight which parts are missing and why.`

const pippinTaxPrompt = `The uploaded document is associated with property and real estate. Extract the tax assessment and tax bill and present them in a JSON format like:
{
  "tax_assessment": "",
  "tax_bill": ""
}

If something is missing or blurry return an empty string and a warning message for that particular field being unclear or missing.`

const genericPrompt = `Please analyze this document and extract all relevant information including:
- Document type and purpose
- Key dates
- Important numbers and figures
- Significant parties involved
- Financial details if present
- Any special terms or conditions
- Notable observations or irregularities`

var metaPrompts = map[domain.DocumentType]string{
	domain.DocTypeSupplier:    supplierPrompt,
	domain.DocTypeTransporter: transporterPrompt,
	domain.DocTypePippinTax:   pippinTaxPrompt,
	domain.DocTypeGeneric:     genericPrompt,
}

// BuildPrompt returns the instruction prompt for a document type, with an
// optional trailing user question. Unknown types get the generic prompt.
func BuildPrompt(docType domain.DocumentType, question string) string {
	meta, ok := metaPrompts[docType]
	if !ok {
		meta = genericPrompt
	}
	prompt := systemPreamble + "\n\n" + meta
	if question != "" {
		prompt += "\n\nQuestion: " + question
	}
	return prompt
}
