package evaluation

import (
	"net/url"
)

const whatsappSendURL = "https://api.whatsapp.com/send"

// whatsappDeepLink builds the outbound messaging link pre-filled with the
// parent contact and the generated text. Delivery is never confirmed.
func whatsappDeepLink(phone, text string) string {
	query := url.Values{}
	query.Set("phone", phone)
	query.Set("text", text)
	return whatsappSendURL + "?" + query.Encode()
}
