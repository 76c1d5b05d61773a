package classifier

func DefaultIncomeCategories() Table {
	return NewTable(
		Rule{Label: "Novias", Keywords: []string{"novia", "nuvies", "bride"}},
		Rule{Label: "Eventos", Keywords: []string{"evento", "event"}},
		Rule{Label: "Cumpleaños", Keywords: []string{"cumple", "birthday"}},
		Rule{Label: "Funerales", Keywords: []string{"funeral", "condolencia"}},
		Rule{Label: "Corporativo", Keywords: []string{"empresa", "corporate", "b2b"}},
		Rule{Label: "Regalos", Keywords: []string{"regalo", "gift"}},
	)
}

func DefaultIncomeChannels() Table {
	return NewTable(
		Rule{Label: "Instagram", Keywords: []string{"instagram", "ig"}},
		Rule{Label: "Tienda", Keywords: []string{"tienda", "store", "local"}},
		Rule{Label: "Web", Keywords: []string{"web", "online", "shop"}},
		Rule{Label: "WhatsApp", Keywords: []string{"whatsapp", "wasap", "ws"}},
		Rule{Label: "Referidos", Keywords: []string{"referido", "referal", "recomendacion", "recomendación"}},
	)
}

func DefaultExpenseCategories() Table {
	return NewTable(
		Rule{Label: "Alquiler del local", Keywords: []string{"alquiler", "renta", "lloguer"}},
		Rule{Label: "Sueldos y honorarios", Keywords: []string{"nomina", "nómina", "sueldo", "salario", "honorario"}},
		Rule{Label: "Servicios", Keywords: []string{"luz", "agua", "internet", "gas", "energia", "energía"}},
		Rule{Label: "Marketing", Keywords: []string{"ads", "facebook", "instagram ads", "publicidad", "marketing"}},
		Rule{Label: "Transporte y envíos", Keywords: []string{"envio", "envío", "envios", "envíos", "transporte", "courier", "glovo", "uber"}},
		Rule{Label: "Materiales", Keywords: []string{"material", "suministro", "herramienta"}},
		Rule{Label: "Flores y verdes", Keywords: []string{"flor", "rosa", "tallo", "verde", "ramo", "floral"}},
		Rule{Label: "Empaques y packaging", Keywords: []string{"caja", "bolsa", "papel", "packaging", "envoltorio"}},
		Rule{Label: "Impuestos y tasas", Keywords: []string{"impuesto", "iva", "tasas", "tributo"}},
		Rule{Label: DefaultLabel},
	)
}

func DefaultFixedCategories() []string {
	return []string{
		"Alquiler del local",
		"Sueldos y honorarios",
		"Servicios",
		"Marketing",
		"Impuestos y tasas",
	}
}

func DefaultIncome() IncomeClassifier {
	return NewIncome(DefaultIncomeCategories(), DefaultIncomeChannels())
}

func DefaultExpense() ExpenseClassifier {
	return NewExpense(DefaultExpenseCategories(), DefaultFixedCategories()...)
}
