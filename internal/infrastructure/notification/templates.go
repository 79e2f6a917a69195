package notification

import (
	"strings"

	"github.com/pniceshipping/portal/internal/core/domain"
)

// messageTemplate holds the plain-text and HTML bodies for one status. The
// literal {{package_id}} and {{status}} placeholders are substituted at
// dispatch time; they are part of the template contract, which is why
// rendering uses plain string replacement instead of a template engine.
type messageTemplate struct {
	Text string
	HTML string
}

var statusTemplates = map[domain.ShipmentStatus]messageTemplate{
	domain.StatusReceived: {
		Text: "Bonne nouvelle ! Votre colis {{package_id}} a été reçu à notre centre de tri. Statut: {{status}}.",
		HTML: "<p>Bonne nouvelle ! Votre colis <strong>{{package_id}}</strong> a été reçu à notre centre de tri.</p><p>Statut: {{status}}</p>",
	},
	domain.StatusInTransit: {
		Text: "Votre colis {{package_id}} est en route. Statut: {{status}}.",
		HTML: "<p>Votre colis <strong>{{package_id}}</strong> est en route.</p><p>Statut: {{status}}</p>",
	},
	domain.StatusAvailable: {
		Text: "Votre colis {{package_id}} est disponible pour le retrait. Statut: {{status}}.",
		HTML: "<p>Votre colis <strong>{{package_id}}</strong> est disponible pour le retrait.</p><p>Statut: {{status}}</p>",
	},
	domain.StatusDelivered: {
		Text: "Votre colis {{package_id}} a été livré. Merci de votre confiance ! Statut: {{status}}.",
		HTML: "<p>Votre colis <strong>{{package_id}}</strong> a été livré. Merci de votre confiance !</p><p>Statut: {{status}}</p>",
	},
}

// genericTemplate covers any status without a dedicated entry, so future
// lifecycle states still produce a readable message.
var genericTemplate = messageTemplate{
	Text: "Le statut de votre colis {{package_id}} a changé: {{status}}.",
	HTML: "<p>Le statut de votre colis <strong>{{package_id}}</strong> a changé: {{status}}.</p>",
}

// renderBodies substitutes the placeholders for one shipment.
func renderBodies(status domain.ShipmentStatus, trackingNumber string) (text, html string) {
	tpl, ok := statusTemplates[status]
	if !ok {
		tpl = genericTemplate
	}
	r := strings.NewReplacer(
		"{{package_id}}", trackingNumber,
		"{{status}}", string(status),
	)
	return r.Replace(tpl.Text), r.Replace(tpl.HTML)
}
