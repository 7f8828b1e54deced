package calendar

import "time"

// Anglo rules shared by the US and Libor calendars.
var (
	NewYearsDay       = Fixed("New Year's Day", time.January, 1, SundayToMonday)
	UKEarlyMayBank    = Rule{Name: "Early May Bank Holiday", Month: time.May, Day: 1, Offset: Nth(time.Monday, 1)}
	UKSpringBank      = Rule{Name: "Spring Bank Holiday", Month: time.May, Day: 31, Offset: Nth(time.Monday, -1)}
	UKLateSummerBank  = Rule{Name: "Late Summer Bank Holiday", Month: time.August, Day: 31, Offset: Nth(time.Monday, -1)}
	USIndependenceDay = Fixed("US Independence Day", time.July, 4, SundayToMonday)
	USVeteransDay     = Fixed("US Veterans Day", time.November, 11, SundayToMonday)
	Christmas         = Fixed("Christmas", time.December, 25, SundayToMonday)
	BoxingDay         = Fixed("Boxing Day", time.December, 26, NextMondayOrTuesday)
	LaborDay          = Fixed("International Labor Day", time.May, 1, nil)

	GoodFriday   = EasterOffset("Good Friday", -2)
	EasterMonday = EasterOffset("Easter Monday", 1)

	USMartinLutherKingJr = NthWeekday("Martin Luther King Jr. Day", time.January, time.Monday, 3).From(1986)
	USPresidentsDay      = NthWeekday("Presidents Day", time.February, time.Monday, 3)
	USMemorialDay        = NthWeekday("Memorial Day", time.May, time.Monday, -1)
	USLaborDay           = NthWeekday("Labor Day", time.September, time.Monday, 1)
	USColumbusDay        = NthWeekday("Columbus Day", time.October, time.Monday, 2)
	USThanksgivingDay    = NthWeekday("Thanksgiving", time.November, time.Thursday, 4)
)

// Brazilian national holidays as published by ANBIMA.
var anbimaRules = []Rule{
	Fixed("Confraternizacao Universal", time.January, 1, nil),
	EasterOffset("Carnaval (segunda)", -48),
	EasterOffset("Carnaval (terca)", -47),
	EasterOffset("Paixao de Cristo", -2),
	Fixed("Tiradentes", time.April, 21, nil),
	Fixed("Dia do Trabalho", time.May, 1, nil),
	EasterOffset("Corpus Christi", 60),
	Fixed("Independencia do Brasil", time.September, 7, nil),
	Fixed("Nossa Sr.a Aparecida", time.October, 12, nil),
	Fixed("Finados", time.November, 2, nil),
	Fixed("Proclamacao da Republica", time.November, 15, nil),
	Fixed("Dia Nacional de Zumbi e da Consciencia Negra", time.November, 20, nil).From(2024),
	Fixed("Natal", time.December, 25, nil),
}

var usTradingRules = []Rule{
	NewYearsDay,
	USMartinLutherKingJr,
	USPresidentsDay,
	GoodFriday,
	USMemorialDay,
	USIndependenceDay,
	USLaborDay,
	USThanksgivingDay,
	Christmas,
}

// Applicable to all Libor tenors and currencies.
var liborBaseRules = []Rule{
	Fixed("New Year's Day", time.January, 1, NearestWorkday),
	GoodFriday,
	EasterMonday,
	Fixed("Early May Bank Holiday", time.May, 1, ClosestNextMonday),
	Fixed("Spring Bank Holiday", time.May, 31, ClosestPreviousMonday),
	Fixed("Summer Bank Holiday", time.August, 31, ClosestPreviousMonday),
	Fixed("Christmas", time.December, 25, NearestWorkday),
	BoxingDay,
}

var liborEurONRules = []Rule{
	NewYearsDay,
	GoodFriday,
	EasterMonday,
	LaborDay,
	UKEarlyMayBank,
	UKSpringBank,
	UKLateSummerBank,
	Christmas,
	BoxingDay,
}

var liborUsdONRules = []Rule{
	NewYearsDay,
	USMartinLutherKingJr,
	USPresidentsDay,
	GoodFriday,
	EasterMonday,
	UKEarlyMayBank,
	UKSpringBank,
	USIndependenceDay,
	UKLateSummerBank,
	USLaborDay,
	USColumbusDay,
	USVeteransDay,
	USThanksgivingDay,
	Christmas,
	BoxingDay,
}
