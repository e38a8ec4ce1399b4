package notify

import (
	"fmt"
	"strings"

	"github.com/preparenow/alerts-backend-go/internal/models"
)

// Message is a rendered alert title/body pair
type Message struct {
	Title string
	Body  string
}

var enterMessages = map[models.HazardType]map[models.Severity]Message{
	models.HazardFlood: {
		models.SeverityCritical: {
			Title: "CRITICAL FLOOD ALERT",
			Body:  "You have entered a CRITICAL flood zone. Seek higher ground immediately. Call 999 if in danger.",
		},
		models.SeverityHigh: {
			Title: "HIGH FLOOD ALERT",
			Body:  "You are in a high-risk flood area. Move to higher ground and avoid water.",
		},
		models.SeverityWarning: {
			Title: "Flood Warning",
			Body:  "You have entered a flood warning area. Stay alert and avoid low-lying areas.",
		},
		models.SeverityInfo: {
			Title: "Flood Information",
			Body:  "You are in an area with potential flood risk. Monitor conditions.",
		},
	},
	models.HazardFire: {
		models.SeverityCritical: {
			Title: "CRITICAL FIRE ALERT",
			Body:  "IMMEDIATE DANGER: Active fire zone. Evacuate immediately. Call 999.",
		},
		models.SeverityHigh: {
			Title: "HIGH FIRE ALERT",
			Body:  "You are near an active fire. Follow evacuation orders and stay alert.",
		},
		models.SeverityWarning: {
			Title: "Fire Warning",
			Body:  "Fire risk in this area. Stay informed and be ready to evacuate.",
		},
		models.SeverityInfo: {
			Title: "Fire Information",
			Body:  "Elevated fire risk. Avoid ignition sources.",
		},
	},
	models.HazardStorm: {
		models.SeverityCritical: {
			Title: "SEVERE STORM WARNING",
			Body:  "Dangerous storm conditions. Seek shelter immediately.",
		},
		models.SeverityHigh: {
			Title: "HIGH STORM ALERT",
			Body:  "Severe storm approaching. Take shelter and secure loose objects.",
		},
		models.SeverityWarning: {
			Title: "Storm Warning",
			Body:  "Storm warning active. Stay indoors and monitor conditions.",
		},
		models.SeverityInfo: {
			Title: "Storm Information",
			Body:  "Stormy weather expected. Stay alert.",
		},
	},
	models.HazardEvacuation: {
		models.SeverityCritical: {
			Title: "MANDATORY EVACUATION",
			Body:  "You are in a mandatory evacuation zone. Leave immediately. Follow official routes.",
		},
		models.SeverityHigh: {
			Title: "EVACUATION ALERT",
			Body:  "Evacuation recommended. Prepare to leave and follow official guidance.",
		},
		models.SeverityWarning: {
			Title: "Evacuation Warning",
			Body:  "Be prepared to evacuate. Monitor official channels.",
		},
		models.SeverityInfo: {
			Title: "Evacuation Information",
			Body:  "Potential evacuation area. Stay informed.",
		},
	},
}

var exitMessages = map[models.HazardType]Message{
	models.HazardFlood: {
		Title: "Left Flood Zone",
		Body:  "You have exited the flood zone. Stay alert.",
	},
	models.HazardFire: {
		Title: "Left Fire Zone",
		Body:  "You have exited the fire risk area.",
	},
	models.HazardStorm: {
		Title: "Left Storm Zone",
		Body:  "You have exited the storm warning area.",
	},
	models.HazardEvacuation: {
		Title: "Left Evacuation Zone",
		Body:  "You have exited the evacuation zone.",
	},
}

// MessageFor renders the alert text for a zone transition. Enter messages are
// keyed by hazard type and severity, exits by hazard type alone; hazards
// without a specific template fall back to a generic message.
func MessageFor(zone models.Zone, t models.TransitionType) Message {
	if t == models.TransitionEnter {
		if bySeverity, ok := enterMessages[zone.HazardType]; ok {
			if msg, ok := bySeverity[zone.Severity]; ok {
				return msg
			}
		}
		return Message{
			Title: fmt.Sprintf("%s ALERT", strings.ToUpper(string(zone.Severity))),
			Body:  fmt.Sprintf("You have entered a %s %s zone.", zone.Severity, zone.HazardType),
		}
	}

	if msg, ok := exitMessages[zone.HazardType]; ok {
		return msg
	}
	return Message{
		Title: "Zone Exited",
		Body:  fmt.Sprintf("You have left the %s zone.", zone.HazardType),
	}
}
