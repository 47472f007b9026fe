package drought

import "github.com/wafa-bouzouita/water-tracker/internal/services/classify"

// DrynessScheme returns the dryness levels applied to standardized index
// values, ordered from driest to wettest.
func DrynessScheme() *classify.Scheme {
	return classify.NewScheme(
		classify.Threshold{Name: "Très bas", Min: nil, Max: classify.Bound(-1.78)},
		classify.Threshold{Name: "Bas", Min: classify.Bound(-1.78), Max: classify.Bound(-0.84)},
		classify.Threshold{Name: "Modérément bas", Min: classify.Bound(-0.84), Max: classify.Bound(-0.25)},
		classify.Threshold{Name: "Autour de la normale", Min: classify.Bound(-0.25), Max: classify.Bound(0.25)},
		classify.Threshold{Name: "Modérément haut", Min: classify.Bound(0.25), Max: classify.Bound(0.84)},
		classify.Threshold{Name: "Haut", Min: classify.Bound(0.84), Max: classify.Bound(1.28)},
		classify.Threshold{Name: "Très haut", Min: classify.Bound(1.28), Max: nil},
	)
}

// SSWIScheme returns the soil wetness classes applied to standardized soil
// wetness index values, ordered from driest to wettest.
func SSWIScheme() *classify.Scheme {
	return classify.NewScheme(
		classify.Threshold{Name: "Extrêmement sec", Min: nil, Max: classify.Bound(-1.75)},
		classify.Threshold{Name: "Très sec", Min: classify.Bound(-1.75), Max: classify.Bound(-1.28)},
		classify.Threshold{Name: "Modérément sec", Min: classify.Bound(-1.28), Max: classify.Bound(-0.84)},
		classify.Threshold{Name: "Autour de la normale", Min: classify.Bound(-0.84), Max: classify.Bound(0.84)},
		classify.Threshold{Name: "Modérément humide", Min: classify.Bound(0.84), Max: classify.Bound(1.28)},
		classify.Threshold{Name: "Très humide", Min: classify.Bound(1.28), Max: classify.Bound(1.75)},
		classify.Threshold{Name: "Extrêmement humide", Min: classify.Bound(1.75), Max: nil},
	)
}

// HumidityScheme returns the soil humidity classes applied to soil wetness
// percentages. The top class absorbs saturated readings at or above 100.
func HumidityScheme() *classify.Scheme {
	return classify.NewScheme(
		classify.Threshold{Name: "Extrêmement sec", Min: nil, Max: classify.Bound(15)},
		classify.Threshold{Name: "Très sec", Min: classify.Bound(15), Max: classify.Bound(30)},
		classify.Threshold{Name: "Sec", Min: classify.Bound(30), Max: classify.Bound(45)},
		classify.Threshold{Name: "Proche de la normale", Min: classify.Bound(45), Max: classify.Bound(60)},
		classify.Threshold{Name: "Humide", Min: classify.Bound(60), Max: classify.Bound(75)},
		classify.Threshold{Name: "Très humide", Min: classify.Bound(75), Max: classify.Bound(90)},
		classify.Threshold{Name: "Extrêmement humide", Min: classify.Bound(90), Max: classify.Bound(100)},
		classify.Threshold{Name: "Saturé", Min: classify.Bound(100), Max: nil},
	)
}
