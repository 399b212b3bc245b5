package shipping

// regions lists all 58 wilayas in administrative code order.
var regions = []Region{
	{Code: 1, Name: "Adrar", ArabicName: "أدرار"},
	{Code: 2, Name: "Chlef", ArabicName: "الشلف"},
	{Code: 3, Name: "Laghouat", ArabicName: "الأغواط"},
	{Code: 4, Name: "Oum El Bouaghi", ArabicName: "أم البواقي"},
	{Code: 5, Name: "Batna", ArabicName: "باتنة"},
	{Code: 6, Name: "Béjaïa", ArabicName: "بجاية"},
	{Code: 7, Name: "Biskra", ArabicName: "بسكرة"},
	{Code: 8, Name: "Béchar", ArabicName: "بشار"},
	{Code: 9, Name: "Blida", ArabicName: "البليدة"},
	{Code: 10, Name: "Bouira", ArabicName: "البويرة"},
	{Code: 11, Name: "Tamanrasset", ArabicName: "تمنراست"},
	{Code: 12, Name: "Tébessa", ArabicName: "تبسة"},
	{Code: 13, Name: "Tlemcen", ArabicName: "تلمسان"},
	{Code: 14, Name: "Tiaret", ArabicName: "تيارت"},
	{Code: 15, Name: "Tizi Ouzou", ArabicName: "تيزي وزو"},
	{Code: 16, Name: "Alger", ArabicName: "الجزائر"},
	{Code: 17, Name: "Djelfa", ArabicName: "الجلفة"},
	{Code: 18, Name: "Jijel", ArabicName: "جيجل"},
	{Code: 19, Name: "Sétif", ArabicName: "سطيف"},
	{Code: 20, Name: "Saïda", ArabicName: "سعيدة"},
	{Code: 21, Name: "Skikda", ArabicName: "سكيكدة"},
	{Code: 22, Name: "Sidi Bel Abbès", ArabicName: "سيدي بلعباس"},
	{Code: 23, Name: "Annaba", ArabicName: "عنابة"},
	{Code: 24, Name: "Guelma", ArabicName: "قالمة"},
	{Code: 25, Name: "Constantine", ArabicName: "قسنطينة"},
	{Code: 26, Name: "Médéa", ArabicName: "المدية"},
	{Code: 27, Name: "Mostaganem", ArabicName: "مستغانم"},
	{Code: 28, Name: "M'Sila", ArabicName: "المسيلة"},
	{Code: 29, Name: "Mascara", ArabicName: "معسكر"},
	{Code: 30, Name: "Ouargla", ArabicName: "ورقلة"},
	{Code: 31, Name: "Oran", ArabicName: "وهران"},
	{Code: 32, Name: "El Bayadh", ArabicName: "البيض"},
	{Code: 33, Name: "Illizi", ArabicName: "إليزي"},
	{Code: 34, Name: "Bordj Bou Arréridj", ArabicName: "برج بوعريريج"},
	{Code: 35, Name: "Boumerdès", ArabicName: "بومرداس"},
	{Code: 36, Name: "El Tarf", ArabicName: "الطارف"},
	{Code: 37, Name: "Tindouf", ArabicName: "تندوف"},
	{Code: 38, Name: "Tissemsilt", ArabicName: "تيسمسيلت"},
	{Code: 39, Name: "El Oued", ArabicName: "الوادي"},
	{Code: 40, Name: "Khenchela", ArabicName: "خنشلة"},
	{Code: 41, Name: "Souk Ahras", ArabicName: "سوق أهراس"},
	{Code: 42, Name: "Tipaza", ArabicName: "تيبازة"},
	{Code: 43, Name: "Mila", ArabicName: "ميلة"},
	{Code: 44, Name: "Aïn Defla", ArabicName: "عين الدفلى"},
	{Code: 45, Name: "Naâma", ArabicName: "النعامة"},
	{Code: 46, Name: "Aïn Témouchent", ArabicName: "عين تموشنت"},
	{Code: 47, Name: "Ghardaïa", ArabicName: "غرداية"},
	{Code: 48, Name: "Relizane", ArabicName: "غليزان"},
	{Code: 49, Name: "Timimoun", ArabicName: "تيميمون"},
	{Code: 50, Name: "Bordj Badji Mokhtar", ArabicName: "برج باجي مختار"},
	{Code: 51, Name: "Ouled Djellal", ArabicName: "أولاد جلال"},
	{Code: 52, Name: "Béni Abbès", ArabicName: "بني عباس"},
	{Code: 53, Name: "In Salah", ArabicName: "عين صالح"},
	{Code: 54, Name: "In Guezzam", ArabicName: "عين قزام"},
	{Code: 55, Name: "Touggourt", ArabicName: "تقرت"},
	{Code: 56, Name: "Djanet", ArabicName: "جانت"},
	{Code: 57, Name: "El M'Ghair", ArabicName: "المغير"},
	{Code: 58, Name: "El Meniaa", ArabicName: "المنيعة"},
}
