package store

import (
	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/model"
)

const (
	catTrunks    = "Telephony – Trunks"
	catServices  = "Telephony – Services"
	catOnceOff   = "Telephony – Once-Off"
	catCallRates = "Telephony – PAYG Call Rates"
	catNBN       = "NBN"
	catNextPBX   = "Phone Systems – Next PBX"
	cat3CXPro    = "Phone Systems – 3CX Pro"
	cat3CXEnt    = "Phone Systems – 3CX Enterprise"
)

type catalogEntry struct {
	name     string
	price    string
	category string
	unitNote string
}

var kngJuly2025 = []catalogEntry{
	{"Next SIP Trunk - PAYG (calls as you go)", "10", catTrunks, "(Per Channel)"},
	{"Next SIP Trunk - Included (Local + National + Mobile)", "50", catTrunks, "(Per Channel)"},

	{"100 range DID", "60", catServices, ""},
	{"Single number DID", "5", catServices, ""},
	{"Inbound 13, 18 DID", "30", catServices, ""},
	{"1300/1800 Numbers Port", "125", catServices, ""},

	{"Complex Port (Cat C)", "300", catOnceOff, ""},
	{"Simple Port (Cat A)", "100", catOnceOff, ""},

	{"Local & National Calls", "0.10", catCallRates, "per call"},
	{"Mobile Calls", "0.20", catCallRates, "per minute"},
	{"13/1300 Calls", "0.33", catCallRates, "per call"},

	{"NBN 25/5 Ultd (FTTB & FTTN)", "70", catNBN, ""},
	{"NBN 25/10 Ultd (Fibre, FTTC & HFC)", "70", catNBN, ""},
	{"NBN 50/20 Ultd", "90", catNBN, ""},
	{"NBN 100/40 Ultd", "120", catNBN, ""},
	{"NBN 250/100 Ultd (FTTP Only)", "120", catNBN, ""},
	{"NBN 500/200 Ultd (FTTP Only)", "140", catNBN, ""},
	{"NBN 1000/400 Ultd (FTTP Only)", "170", catNBN, ""},
	{"Static IP Address", "5", catNBN, ""},
	{"NBN Connection Fees (All Connections) - Once Off", "360", catNBN, ""},

	{"Virtual Charge", "30", catNextPBX, ""},
	{"Extension - PAYG (User extensions or Fax)", "10", catNextPBX, ""},
	{"Extension - Included (User extensions or Fax)", "30", catNextPBX, ""},

	{"3CX Pro – 8 Users", "150", cat3CXPro, ""},
	{"3CX Enterprise – 8 Users", "170", cat3CXEnt, ""},
	{"3CX Pro – 16 Users", "220", cat3CXPro, ""},
	{"3CX Enterprise – 16 Users", "260", cat3CXEnt, ""},
	{"3CX Pro – 24 Users", "280", cat3CXPro, ""},
	{"3CX Enterprise – 24 Users", "320", cat3CXEnt, ""},
	{"3CX Pro – 32 Users", "330", cat3CXPro, ""},
	{"3CX Enterprise – 32 Users", "390", cat3CXEnt, ""},
}

// KNGJuly2025Catalog returns the KNG July 2025 price list with fresh ids.
func KNGJuly2025Catalog() []model.PriceItem {
	items := make([]model.PriceItem, len(kngJuly2025))
	for i, e := range kngJuly2025 {
		items[i] = model.PriceItem{
			ID:        model.NewID(),
			Name:      e.name,
			UnitPrice: decimal.RequireFromString(e.price),
			Category:  e.category,
			UnitNote:  e.unitNote,
		}
	}
	return items
}
