/*
Package fixtures contains known-good key and proof messages shared by tests.
*/
package fixtures

const (
	// Groth16BN254Key is a Groth16 BN254 key registration message for the
	// public signal 33.
	Groth16BN254Key = `{"public_signal":"33",` +
		`"vk_alpha1":"134341fbe5f0719617003adb9c8fe9038d5d913d1a1e961618cd67f8f097d0cb203a9e851d18a4cfe8ab963083acda4af394c8c2461930397057da9edf030d4c",` +
		`"vk_beta_2":"26e36c244fbd85b1f96bb3c4eecc5024f9e0507247e6675e56d5d222f43921872c13498425fa4b090c401561092dac563a0864ef22aa2bcfcf0e75bda8ad94aa10e1a9938cab807dc19806127b49d697de33abf79ad5ae46ca240927dd9c57d623c3cad4c8c16360c9199a701b707474fd6bd47e8841d4ebb7a88b826459535d",` +
		`"vk_gamma_2":"198e9393920d483a7260bfb731fb5d25f1aa493335a9e71297e485b7aef312c21800deef121f1e76426a00665e5c4479674322d4f75edadd46debd5cd992f6ed090689d0585ff075ec9e99ad690c3395bc4b313370b38ef355acdadcd122975b12c85ea5db8c6deb4aab71808dcb408fe3d1e7690c43d37b4ce6cc0166fa7daa",` +
		`"vk_delta_2":"0c80d2c61aaac33c924c322ed740b6ed3775eb171b173c09640a29aa1322e5450dd122b23f09aab8b1a3fd739d296949f328fd2cd9deedc6d1ed3262803a19e804b9033fb8a3476eb8b5e609f529cc52fbaa9df6f59a5a67aab944cde646d13f2d17ed688afb5f3abc97f978fe9da3a25feee8bfbb0762ae80be6aabb76a742d",` +
		`"vk_ic0":"22f4a08cff59356634d3cd5ad41e85e4b4b484a7633eb64ddd739032936add322101b08d07ff3315947df2a6652e667d6a3e96fca1a661aadc2092a85c3912fd",` +
		`"vk_ic1":"17fa0f95ec76599763a6629b557bf18fd938305c7472fd81c368f8ca76615cee037b264dee54b6fd3298fd0396525cb1aec0dd971e3ab771f242ce10980763cd"}`
	// Groth16BN254Proof is a valid proof for Groth16BN254Key.
	Groth16BN254Proof = `{"proof_a":"2a7efa6d4fee4a2df464f6c926a81e709ecf27642f4f99aa5c90bc479ce1122a149e00a4b97ea4ef3caec4d5ab168eb0effa1441ee448678d6e77caa2d19f3b2",` +
		`"proof_b":"023290eac0dc45935bb65780f2dd380c594b207509fceeb768c8d9a33a530c640a3cc26b8fa867e1484bbe1c98131cdaad2c48a370688e259f1aff52a0d393872c41442472714933964a28c649c2ebe4608f08e8e0dd023bb90df134f45d20281c7c24fd81f0affa2450181480411973b2d7b52683fdd9d4e3068ef6b5054296",` +
		`"proof_c":"24102019b76cd1f917b5e765519f65504ecfebfb5f4a11a168fd29048e004e0f03b05f4cd80703e6f7f51c7c3394253a4900f0186386be4015d363425ea27488"}`
	// Groth16BLS12381Key is a Groth16 BLS12-381 key registration message for
	// the public signal 33.
	Groth16BLS12381Key = `{"public_signal":"33",` +
		`"vk_alpha1":"121ec6cddca2aa0dedf8dbb86e96dc4100b58ea07c01d7ea68a37f8f72191ab2bbe9f16bfe675f71c899ff11e23cbb04064831acc8c18f561f446eeaac3a9a056cb9a89b0b3f13a57eab4e97ebaff6f0a39327bd0a4b5f725d633c87474d35f2",` +
		`"vk_beta_2":"00f3edfbbbe5e2dab32cac1d1ba2f0fdd9eff4067c7152520f0ebbf556c21f98e72590b3cdb614b1ea116991305da942077b7419fac8cc2d38dc6639d68a4cf7c8362efd8395020836f3aa564537fa02a17f2d1b423c19b6cf4784037b1d9f1510afbae9e95703ff3a98c46720f05e642588ef21ccb09580c84d211c0fd60acda18a699f61cef4925b9b113c8a2377f0147c5ee0882a97519627776222438d3e29f581f0e4b61fe18ab42089dfe24a1b9d7376667382941e37329860ec84d105",` +
		`"vk_gamma_2":"13e02b6052719f607dacd3a088274f65596bd0d09920b61ab5da61bbdc7f5049334cf11213945d57e5ac7d055d042b7e024aa2b2f08f0a91260805272dc51051c6e47ad4fa403b02b4510b647ae3d1770bac0326a805bbefd48056c8c121bdb80606c4a02ea734cc32acd2b02bc28b99cb3e287e85a763af267492ab572e99ab3f370d275cec1da1aaa9075ff05f79be0ce5d527727d6e118cc9cdc6da2e351aadfd9baa8cbdd3a76d429a695160d12c923ac9cc3baca289e193548608b82801",` +
		`"vk_delta_2":"07709351aa9646a1311053a0e4cfe6d7db03513beaebb9b87da192758e5ecd40d21ac535e7664e78d669399de703cb72109a5d6b3943018f1dd43462eb71be512213f05e61b2c93bc5f65d270bf78122b00e24d38b0f98efdee072cf3b4c8d0a1905dcb70f21d51fdd376d5fcd258df6c3477a2421527d1702b848954fd7a3bbf710eda0c1880b79a996516ec37d616c13082219d90a7743ad8eb5e3faceec7ad6374029d52eaeca7b66c598b3dd7066e4b6246cea47794fdcffcf7891984272",` +
		`"vk_ic0":"16aca3c7fb4157ef2f70fa4098434d97721a2ffa30f1ed64d3123cccb3928433899ab147217331f74f18ce687cc591700e79ca556db5b53e92f1133b889dbc11ef79615331a9a810cbef02d3a760b437a1bd50c1b6c396288abcb37479bc18a5",` +
		`"vk_ic1":"0c1aeb08622db17dab3de7590db8f46349c7e08eff70fa63af8332db75b977bd0e630b04d8e28d4b3416381b27f4bded12e8067fd6f65bd436608cf66f0eb0c19b7da57b72785966d71b91229cde327918d14b3330b891bdfcf255e3d0ecfbfd"}`
	// Groth16BLS12381Proof is a valid proof for Groth16BLS12381Key.
	Groth16BLS12381Proof = `{"proof_a":"020fcbc0e3ae8e322a5cb6fb707d2511878eda020096f8f421cf75c263e43c2ee6d2392b6e03410d5555fd80628581f1054ce4ab8c9c277ce545b05efc145a1aeecd84038c67972a55367b2e1181c19311a7b3a3aa2b2cd70c4823db3ae498a0",` +
		`"proof_b":"1545a18455dd6e1abaf4e27f3ee198bb5abb199b0650030593ce0d03b7cc59d458864acc3db510efe2300f778aa797e017c8d8fa15654b1995f0e659910bbdf8c0d88ef6801e1615e664b559daa8fd139b88569e95e6058d077fb5ae6aafe93116d6254de64023b0e8b41b145bb43d53bbee70486de6dd67c00f4f05c5e6a563f3b808b942184fa3488ace3a57e90016106fcc94b8d3d95c52ca1a616348b9095e7df0ba97156e4e93e787474d19e0ea423eda0bf5ebc81efce1b12f4c22ee00",` +
		`"proof_c":"10406a2ada964c701668b06be2e3011bf22d9b6c6c0731f5b042a6b7ccf777d58b8e8b8b19fd711953b170d591981eb80f373990aee796b4797bb6ee63f57cbc402ce8dc2360ef18e40c5a44e8d2948e94d6c7f226f384f6cf4c0190de295b87"}`
	// PlonkBN254Key is a PLONK BN254 key registration message (n = 3) for the
	// public input 0x21.
	PlonkBN254Key = `{"public_signal":["0000000000000000000000000000000000000000000000000000000000000021"],` +
		`"n":3,` +
		`"num_inputs":1,` +
		`"selector_commitments":["09b3a8742e323fbb6b7e858287af59c6ff997667de6f10136356774a5e93fe872fd1ef45f38c9c0814183b2ca7eba4e2d5d5d7f871bb1a89e96217df74c9833d","40000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000","2b63946d2ccf8529ae7ba5324902e7ee834b19e8dd666b3533850c2ed36d7dfe2738c050f06ba19dd919bbb1e55c408ceadc583bbd190f10f54a9b79bb2b03da","40000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000","2b63946d2ccf8529ae7ba5324902e7ee834b19e8dd666b3533850c2ed36d7dfe092b8e21f0c5fe8bdf368a049c2517d0aca51255ab58bb7c46d5f09d1d51f96d","40000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"],` +
		`"next_step_selector_commitments":["40000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"],` +
		`"permutation_commitments":["1516cf1540873838abfa4e7501f523c2c56ce33a33f2cefc2da70cb30795bd610182f97175b9b3bc30e175307758894dd2938fcf556669f9820f1c1d2089f379","19c5d1b7df1125f24646c8e7ac90689c6cd593703e7cd4d7918e3d7c9c2f220a0daf49f7dfa3f8d741df0efcef1f171c961b47f8b28d46a2af00be85c8b6e713","14ab37e299bdf4502f0034f4ee42281108e1ae6eab93e1c435e1aa68beb5153622def6b03001792d9fd384af642febcc6cc821726783d359ebfe6b30c9c0915a","1f8dbc422d4aabab7112ee68c336bbe2bbe095d6d7fa6e5a7f1292ea7487412f0beb14b6bfb14c16a44f4e37d98e401cb38c6221b9f4ccebc52ec8088c44a2a8"],` +
		`"non_residues":["0000000000000000000000000000000000000000000000000000000000000005","0000000000000000000000000000000000000000000000000000000000000007","000000000000000000000000000000000000000000000000000000000000000a"],` +
		`"g2_elements":["198e9393920d483a7260bfb731fb5d25f1aa493335a9e71297e485b7aef312c21800deef121f1e76426a00665e5c4479674322d4f75edadd46debd5cd992f6ed090689d0585ff075ec9e99ad690c3395bc4b313370b38ef355acdadcd122975b12c85ea5db8c6deb4aab71808dcb408fe3d1e7690c43d37b4ce6cc0166fa7daa","12740934ba9615b77b6a49b06fcce83ce90d67b1d0e2a530069e3a7306569a91116da8c89a0d090f3d8644ada33a5f1c8013ba7204aeca62d66d931b99afe6e725222d9816e5f86b4a7dedd00d04acc5c979c18bd22b834ea8c6d07c0ba441db076441042e77b6309644b56251f059cf14befc72ac8a6157d30924e58dc4c172"]}`
	// PlonkBN254Proof is a valid proof for PlonkBN254Key.
	PlonkBN254Proof = `{"n":3,` +
		`"num_inputs":1,` +
		`"wire_commitments":["1c7ade6b7b63a79bbdf4380ead5793e175e904e8a659019474f25263121599f70a5f7d13d1d549c1b5fa4695d519dce3567aa336d0ced40ce00e6dd9ad77d8c5","238e7e9105d66b54ebcf23b1ac4a8cc9179850a8bb3d9ca0495e5420ff6318901a82fb4a34ed559e3f25de9b0ca7903a7e0692bee2705809e59ed50355e89920","238e7e9105d66b54ebcf23b1ac4a8cc9179850a8bb3d9ca0495e5420ff6318901a82fb4a34ed559e3f25de9b0ca7903a7e0692bee2705809e59ed50355e89920","40000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"],` +
		`"grand_product_commitment":"2ebc09f9ada0ba725ea8d6c06d4c49e156578fc34388aff597a2ef4c94113eab10c2861217b6f698e334359465f85d23bcd3467a72ccefa92fcdef5cf63bb774",` +
		`"quotient_poly_commitments":["1f3e303dc35d69a2886a3831bb88d927273367eda400c1a1195649f7424ce49103668c478ed318e56e3b4f7104877fd0f8255d4a2d39b019cbaba99a0f3285c5","19019a506cb3f41e5748e268b32ba946af045a8b4015561fd36e13f001a201ec1fed0f9d8b21e555372e80803621df8c7179f800e37a3cfbcc48ea6c18fe68ba","077cd81c81628f91c271a9c78c5e3c208b16db7af4135e9d4484aeb3fe74949f125e6bf4e044a1ebb40dca3b9f7f6298d5e6cdacc2abbbea467293987d864184","40000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"],` +
		`"wire_values_at_z":["24bfaac457bacdfb08eb4cac55f60f11f5f691b15e048a4fe0c3016991d92aeb","28226e41e356f1e4de481016a45f3f9c07e17e966dda962f4a088d1b325684e9","28226e41e356f1e4de481016a45f3f9c07e17e966dda962f4a088d1b325684e9","0000000000000000000000000000000000000000000000000000000000000000"],` +
		`"wire_values_at_z_omega":["0000000000000000000000000000000000000000000000000000000000000000"],` +
		`"grand_product_at_z_omega":"1ea357b0967d029cb8714f44c66f447ccff76231ff86ea9416c0e0f60a4e40ed",` +
		`"quotient_polynomial_at_z":"0d3743a423440f9130eb1c36815f549442f836c734f38e1a75278d515f5c40f8",` +
		`"linearization_polynomial_at_z":"00c87a6192b8985101007b6280c4d90435b4f31cc20e833367637e299c957857",` +
		`"permutation_polynomials_at_z":["0853bcc8f41416377af6ad7364aa07a1b981e3f1aa98ccab9b7b26dc197f30cd","2bc9fec71fdd891baff67f9af178e16c2c51b3c609b3fd372bbc01100fe1eb0b","1ab9c6f84d62c1d272cb3b3efa25d288720a396c091d3da6a1c0b37e266053d3"],` +
		`"opening_at_z_proof":"1d99eae30fa0e2d2a330647c3245eceb92dcc0fae92308f6003cd628e6694e682ff1a84ee025d6609fa9b16a29ff7e5bf5ea08932bd6813b989a084d28cb72c4",` +
		`"opening_at_z_omega_proof":"2bcf1e082d97cbc88e318001fc8588be7efb1d60624d8917c9babdde02469a402bb78b2bb7e8e76635d6e34674f6255b05558b8a2de52ff00535cec6bccca8a5"}`
)
